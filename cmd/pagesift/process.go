package main

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var processCmd = &cobra.Command{
	Use:   "process <file>",
	Short: "Extract text from an image or PDF and print the result as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runProcess,
}

var structureCmd = &cobra.Command{
	Use:   "structure <file>",
	Short: "Extract classified structure blocks and print the result as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runStructure,
}

func init() {
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(structureCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	proc := buildProcessor(cfg, newLogger())

	path := args[0]
	var result any
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		result, err = proc.ProcessPDF(cmd.Context(), path)
	} else {
		result, err = proc.ProcessImage(cmd.Context(), path)
	}
	if err != nil {
		return err
	}
	return printJSON(cmd, result)
}

func runStructure(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	proc := buildProcessor(cfg, newLogger())

	result, err := proc.ProcessStructure(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printJSON(cmd, result)
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(out))
	return nil
}
