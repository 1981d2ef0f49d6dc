package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/feyabloom/studio/pkg/browser"
	"github.com/feyabloom/studio/pkg/internal/service"
)

const shellHelp = `commands:
  ls [search]          list the current folder
  cd <folder|..|/>     enter a folder, go up or go to root
  up                   go to the parent folder
  root                 go to the bucket root
  bucket [name]        show or switch the bucket
  select <name>...     select files in the current folder
  unselect <name>...   unselect files
  clear                clear the selection
  rm-selected          delete the selected files
  mv-selected <dest>   move the selected files into dest ("/" for root)
  mkdir <name>         create a folder here
  rename <name> <new>  rename a file here
  pwd                  print bucket, path and selection
  exit                 leave the shell`

// runShell 逐行读取命令并驱动浏览会话，读到 EOF 或 exit 时返回.
func runShell(ctx context.Context, sess *service.BrowserSession, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)

	prompt(out, sess)

	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			prompt(out, sess)
			continue
		}

		if fields[0] == "exit" || fields[0] == "quit" {
			return nil
		}

		if err := shellExec(ctx, sess, fields[0], fields[1:], out); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		prompt(out, sess)
	}

	return sc.Err()
}

func prompt(out io.Writer, sess *service.BrowserSession) {
	fmt.Fprintf(out, "%s:/%s> ", sess.Bucket(), sess.Path())
}

func shellExec(ctx context.Context, sess *service.BrowserSession, name string, args []string, out io.Writer) error {
	switch name {
	case "help", "?":
		fmt.Fprintln(out, shellHelp)
	case "ls":
		resp, err := sess.List(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}

		printListing(out, resp)
	case "cd":
		if len(args) != 1 {
			return fmt.Errorf("usage: cd <folder|..|/>")
		}

		switch args[0] {
		case "..":
			sess.Back()
		case "/":
			sess.Root()
		default:
			for _, seg := range browser.Segments(args[0]) {
				sess.Open(seg)
			}
		}
	case "up":
		sess.Back()
	case "root":
		sess.Root()
	case "bucket":
		if len(args) == 0 {
			fmt.Fprintln(out, sess.Bucket())
			return nil
		}

		return sess.SwitchBucket(args[0])
	case "select":
		sess.Select(args...)
		fmt.Fprintf(out, "%d selected\n", len(sess.Selected()))
	case "unselect":
		sess.Unselect(args...)
		fmt.Fprintf(out, "%d selected\n", len(sess.Selected()))
	case "clear":
		sess.ClearSelection()
	case "rm-selected":
		resp, err := sess.DeleteSelected(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "deleted %d object(s)\n", len(resp.Deleted))
	case "mv-selected":
		if len(args) != 1 {
			return fmt.Errorf("usage: mv-selected <dest>")
		}

		resp, err := sess.MoveSelected(ctx, browser.Clean(args[0]))
		if err != nil {
			return err
		}

		printMoves(out, resp)
	case "mkdir":
		if len(args) != 1 {
			return fmt.Errorf("usage: mkdir <name>")
		}

		resp, err := sess.CreateFolder(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "created %s\n", resp.Path)
	case "rename":
		if len(args) != 2 {
			return fmt.Errorf("usage: rename <name> <new-name>")
		}

		res, err := sess.Rename(ctx, args[0], args[1])
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "%s -> %s\n", res.From, res.To)
	case "pwd":
		fmt.Fprintf(out, "%s:/%s\n", sess.Bucket(), sess.Path())

		if sel := sess.Selected(); len(sel) > 0 {
			fmt.Fprintf(out, "selected: %s\n", strings.Join(sel, ", "))
		}
	default:
		return fmt.Errorf("unknown command %q (try help)", name)
	}

	return nil
}
