// Package winrs provides a minimal Windows Remote Shell (WinRS) client.
//
// WinRS executes native Windows commands on a remote host via the
// WS-Management protocol. The registry gateway uses it to run reg.exe when
// the remote-execution access method is selected.
//
//	shell, err := winrs.NewShell(ctx, wsmanClient, winrs.WithNoProfile())
//	if err != nil {
//	    return err
//	}
//	defer shell.Close(ctx)
//
//	proc, err := shell.Run(ctx, "reg.exe", "query", `"HKLM\SOFTWARE"`)
package winrs
