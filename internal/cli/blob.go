package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/shelby/internal/model"
	"github.com/roach88/shelby/internal/store"
)

// BlobOptions holds flags for the blob command.
type BlobOptions struct {
	*RootOptions
	Output string
}

// BlobResult is the JSON payload of the blob command when writing a file.
type BlobResult struct {
	Key   string `json:"key"`
	Path  string `json:"path"`
	Bytes int64  `json:"bytes"`
}

// NewBlobCommand creates the blob command.
func NewBlobCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BlobOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "blob <document-key>",
		Short: "Export the scan of a document",
		Long: `Stream the scan of a document to stdout or to a file.

The scan is read in chunks, so large documents are never held in memory.

Examples:
  shelby blob /documents/12 -o letter.pdf
  shelby blob 12 > letter.pdf`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBlob(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the scan to a file instead of stdout")

	return cmd
}

func runBlob(opts *BlobOptions, arg string, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := opts.formatter(cmd)

	key, err := store.ParseKey[model.Document](arg)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidKey, "invalid document key "+arg, err)
	}

	st, err := opts.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	blob, err := model.OpenContent(ctx, st, key)
	if err != nil {
		if store.IsNotFound(err) {
			return formatter.Fail(ExitFailure, ErrCodeNotFound, "no document "+key.String(), err)
		}
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to open scan of "+key.String(), err)
	}
	formatter.VerboseLog("scan of %s is %d bytes", key, blob.Size())

	if opts.Output == "" {
		if _, err := io.Copy(cmd.OutOrStdout(), blob); err != nil {
			return WrapExitError(ExitCommandError, "failed to read scan of "+key.String(), err)
		}
		return nil
	}

	n, err := writeBlobFile(opts.Output, blob)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to write "+opts.Output, err)
	}

	result := BlobResult{Key: key.String(), Path: opts.Output, Bytes: n}
	return formatter.Render(result, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Wrote %d bytes of %s to %s\n", n, key, opts.Output)
		return err
	})
}

func writeBlobFile(path string, r io.Reader) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return n, err
}
