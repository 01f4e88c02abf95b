package command

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

const invalidChoice = "Invalid choice. Please enter a number from 1 to 5."

// RunMenu is the interactive loop: it shows the numbered commands, reads a
// choice per line from in, and dispatches it. Invalid input re-prompts. The
// loop ends on Exit, end of input, or when ctx is done. A failing command is
// logged and the menu is shown again.
func RunMenu(ctx context.Context, in io.Reader, out io.Writer, d *Dispatcher) error {
	scanner := bufio.NewScanner(in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		printMenu(out)
		if !scanner.Scan() {
			return scanner.Err()
		}

		cmd, err := ParseCommand(scanner.Text())
		if err != nil {
			fmt.Fprintln(out, invalidChoice)
			continue
		}
		if cmd == Exit {
			fmt.Fprintln(out, "Exiting...")
			return nil
		}
		if err := d.Dispatch(ctx, cmd); err != nil {
			d.logger().Error("command failed", "command", cmd.String(), "error", err)
		}
	}
}

func printMenu(out io.Writer) {
	for cmd := CompileAndClear; cmd <= Exit; cmd++ {
		fmt.Fprintf(out, "%d. %s\n", int(cmd), menuLabels[cmd])
	}
	fmt.Fprint(out, "Enter your choice (1-5): ")
}
