// Command pagesift extracts text and document structure from images and
// PDFs, either as a one-shot CLI or as a long-running HTTP service.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
