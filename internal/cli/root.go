package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// Root runs the command loop until the user exits or stdin is closed.
//
// Any errors returned by command handlers are reported inline; the loop
// itself never stops on a handler error.
func (a *App) Root(ctx context.Context) {

	fmt.Fprintln(a.out, "Welcome to BirthKeeper (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Fprint(a.out, "bk> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			fmt.Fprintln(a.out, "Available commands: add, (l)ist, show <id>, delete <id>, logs, done <log-id>, click <log-id>, reopen <log-id>, scan, export, import <location> <overwrite|merge>, exit")

		case "add":
			a.add(ctx)
		case "l", "list":
			a.list(ctx)
		case "show":
			a.show(ctx, args)
		case "delete":
			a.delete(ctx, args)
		case "logs":
			a.listLogs(ctx)
		case "done", "click", "reopen":
			a.transition(ctx, cmd, args)
		case "scan":
			a.scan(ctx)
		case "export":
			a.export(ctx)
		case "import":
			a.importBackup(ctx, args)
		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return
		default:
			fmt.Fprintln(a.out, "Unknown command:", cmd)
		}
	}
}
