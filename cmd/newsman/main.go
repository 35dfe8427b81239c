// Command newsman はニュースリーダーのAPIサーバーとワーカーを起動する。
package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/newsman/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "newsman: %v\n", err)
		os.Exit(1)
	}
}
