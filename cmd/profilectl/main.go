// cmd/profilectl/main.go

// profilectl 為 profile 服務的終端機 client。
// 每次執行都是一個 session：探測遠端、建立 Gateway 與狀態容器、
// 先 FetchAll，再執行指令本身的 intent 並輸出畫面。

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// exitErr 讓 cobra 的錯誤路徑帶出結束碼。
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

// 結束碼：1 為一般失敗，2 為欄位檢核失敗。
const (
	exitFailure    = 1
	exitValidation = 2
)

func main() {
	root := newRootCmd(os.Stdout, os.Stderr)
	if err := root.ExecuteContext(context.Background()); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			if ee.msg != "" {
				fmt.Fprintln(os.Stderr, "Error:", ee.msg)
			}
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitFailure)
	}
}

// rootFlags 為所有子指令共用的旗標。
type rootFlags struct {
	configPath string
	apiURL     string
	color      string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var flags rootFlags
	root := &cobra.Command{
		Use:           "profilectl",
		Short:         "Manage profiles against the profile API, with a local fallback",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Path to config.toml (default ~/.config/profilehub/config.toml)")
	pf.StringVar(&flags.apiURL, "api-url", "", "Override client.api_url")
	pf.StringVar(&flags.color, "color", "auto", "Colorize output: auto, always or never")

	root.AddCommand(
		newListCmd(&flags),
		newShowCmd(&flags),
		newCreateCmd(&flags),
		newEditCmd(&flags),
		newDeleteCmd(&flags),
		newHealthCmd(&flags),
	)
	return root
}
