package pdf

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/couchcryptid/community-census-etl/internal/domain"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var disableConfigDir sync.Once

// Validator checks a report's PDF structure before text extraction, so a
// truncated or mislabeled download is reported as invalid rather than read as
// an empty page.
type Validator struct{}

// NewValidator creates a structural validator. pdfcpu's on-disk configuration
// directory is disabled for the process.
func NewValidator() *Validator {
	disableConfigDir.Do(api.DisableConfigDir)
	return &Validator{}
}

// Validate runs relaxed pdfcpu validation on the file at path.
func (v *Validator) Validate(path string) (err error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, path)
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %s: %v", domain.ErrInvalidDocument, path, rec)
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.ValidateFile(path, conf); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidDocument, path, err)
	}
	return nil
}
