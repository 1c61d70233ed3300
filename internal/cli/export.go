package cli

import (
	"bytes"
	"fmt"
	"io"
	"mealtrack/internal/blob"
	"mealtrack/internal/core"
	"mealtrack/internal/infra/persistence/codec"
	"os"
	"path"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

const backupPrefix = "backups/"

func newExportCmd(a *app) *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the whole model as an xml, json or cbor document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := exportCodec(format, output)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := c.Encode(&buf, codec.ToDocument(a.store().ExportState())); err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			return os.WriteFile(output, buf.Bytes(), 0o644)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "xml|json|cbor, default from the output extension")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, stdout when empty")
	return cmd
}

func exportCodec(format, output string) (codec.Codec, error) {
	if format != "" {
		return codec.New(codec.Format(format))
	}
	return codec.ForPath(output), nil
}

func newBackupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Copy the model to and from the configured blob store",
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Store a timestamped copy of the model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := core.OpenBlobStore(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			c := codec.ForPath("")
			if a.repo.Persister != nil {
				c = a.repo.Persister.Codec()
			}
			var buf bytes.Buffer
			if err := c.Encode(&buf, codec.ToDocument(a.store().ExportState())); err != nil {
				return err
			}
			key := backupPrefix + "HealthTracker-" + time.Now().UTC().Format("20060102T150405.000000000Z") + "." + string(c.Format())
			info, err := store.Put(cmd.Context(), key, &buf, blob.PutOptions{
				ContentType: codec.ContentType(c.Format()),
				Metadata:    map[string]string{"records": fmt.Sprint(a.store().ExportState().Len())},
			})
			if err != nil {
				return err
			}
			a.logger.Debug().Str("key", info.Key).Int64("size", info.Size).Str("driver", string(store.Driver())).Msg("backup stored")
			_, err = fmt.Fprintln(cmd.OutOrStdout(), info.Key)
			return err
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored backups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := core.OpenBlobStore(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			infos, err := store.List(cmd.Context(), backupPrefix)
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			_, _ = fmt.Fprintln(tw, "KEY\tSIZE\tMODIFIED")
			for _, info := range infos {
				_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\n", info.Key, info.Size, info.LastModified.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}

	restore := &cobra.Command{
		Use:   "restore KEY",
		Short: "Replace the model with a stored backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := core.OpenBlobStore(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			key := args[0]
			if !strings.HasPrefix(key, backupPrefix) {
				key = backupPrefix + key
			}
			_, rc, err := store.Get(cmd.Context(), key)
			if err != nil {
				return err
			}
			defer rc.Close()
			data, err := io.ReadAll(rc)
			if err != nil {
				return err
			}
			doc, err := codec.ForPath(path.Base(key)).Decode(bytes.NewReader(data))
			if err != nil {
				return fmt.Errorf("decode backup %s: %w", key, err)
			}
			snap := codec.FromDocument(doc)
			a.store().ImportState(snap)
			if a.repo.Persister != nil {
				if err := a.repo.Persister.Persist(cmd.Context(), a.store().ExportState()); err != nil {
					return err
				}
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "restored %d records from %s\n", snap.Len(), key)
			return err
		},
	}

	cmd.AddCommand(create, list, restore)
	return cmd
}
