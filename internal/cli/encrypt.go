package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrz1836/greencli/internal/gdk"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var encryptCmd = &cobra.Command{
	Use:   "encrypt <plaintext>",
	Short: "Encrypt data with the wallet",
	Long: `Encrypt PLAINTEXT with a key derived from the logged in wallet.

The output is the document decrypt takes.`,
	Example: `  green encrypt "meet at noon" > note.json`,
	GroupID: groupSecurity,
	Args:    cobra.ExactArgs(1),
	RunE:    runEncrypt,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var decryptCmd = &cobra.Command{
	Use:   "decrypt <data|->",
	Short: "Decrypt data encrypted with the wallet",
	Long: `Decrypt a document produced by encrypt and print the plaintext.

DATA is a file name, or - to read from standard input.`,
	Example: `  green decrypt note.json`,
	GroupID: groupSecurity,
	Args:    cobra.ExactArgs(1),
	RunE:    runDecrypt,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(encryptCmd, decryptCmd)
}

func runEncrypt(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)
	result, err := cc.Call(cmd.Context(), gdk.MethodEncrypt, map[string]string{"plaintext": args[0]})
	if err != nil {
		return err
	}
	return cc.Fmt.PrintRaw(result)
}

func runDecrypt(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)
	data, err := readJSONSource(cc, args[0])
	if err != nil {
		return err
	}

	result, err := cc.Call(cmd.Context(), gdk.MethodDecrypt, data)
	if err != nil {
		return err
	}

	var plaintext string
	if err = decodeField(result, "plaintext", &plaintext); err != nil {
		return err
	}
	return cc.Fmt.Print(plaintext)
}
