package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/easyreads/easyreads/internal/config"
	"github.com/easyreads/easyreads/internal/entrypoint"
)

func newImportBookCommand(loadConfig func() *config.Config) *cobra.Command {
	var favourites bool

	cmd := &cobra.Command{
		Use:   "import-book [book-id...]",
		Short: "Download and paginate books from the catalog",
		Long: `Download the text of one or more catalog books and store their pages.
Books that are already imported are checked and left alone.

Examples:
  # Import Frankenstein and Moby Dick:
  easyreads import-book 84 2701

  # Import every book that any user marked as favourite:
  easyreads import-book --favourites`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !favourites {
				return fmt.Errorf("provide at least one book id or --favourites")
			}

			ids := make([]uint, 0, len(args))
			for _, arg := range args {
				id, err := strconv.ParseUint(arg, 10, 32)
				if err != nil || id == 0 {
					return fmt.Errorf("invalid book id %q", arg)
				}
				ids = append(ids, uint(id))
			}

			app, err := entrypoint.NewApp(loadConfig())
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer app.Close()

			ctx := cmd.Context()
			if favourites {
				favIDs, err := app.Favourites.BookIDs(ctx)
				if err != nil {
					return fmt.Errorf("list favourite books: %w", err)
				}
				ids = append(ids, favIDs...)
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, id := range ids {
				book, err := app.Reader.EnsureBookImported(ctx, id)
				if err != nil {
					failed++
					fmt.Fprintf(out, "✗ %d: %v\n", id, err)
					continue
				}
				fmt.Fprintf(out, "✓ %d: %s (%d pages)\n", book.ID, book.Title, book.PagesInBook)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d books failed to import", failed, len(ids))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&favourites, "favourites", false, "Also import every favourited book")
	return cmd
}
