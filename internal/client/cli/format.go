package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/suitenumerique/drive-sub001/internal/client/models"
)

const timeLayout = "2006-01-02 15:04"

func displayName(it *models.Item) string {
	if it.Title != "" {
		return it.Title
	}
	if it.Filename != "" {
		return it.Filename
	}
	return it.ID
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func itemRow(it *models.Item) string {
	kind, size := "-", humanSize(it.Size)
	if it.IsFolder() {
		kind, size = "d", ""
	}
	star := ""
	if it.IsFavorite {
		star = "*"
	}
	state := ""
	if it.UploadState != "" && it.UploadState != models.UploadStateReady {
		state = string(it.UploadState)
	}
	updated := ""
	if !it.UpdatedAt.IsZero() {
		updated = it.UpdatedAt.Local().Format(timeLayout)
	}
	return strings.Join([]string{kind + star, it.ID, displayName(it), size, updated, state}, "\t")
}

func printItems(w io.Writer, page *models.PaginatedItems) {
	if page == nil || len(page.Items) == 0 {
		fmt.Fprintln(w, "No items.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, it := range page.Items {
		fmt.Fprintln(tw, itemRow(it))
	}
	tw.Flush()
	if page.Pagination.HasMore {
		fmt.Fprintf(w, "(page %d of %d items; more available)\n", page.Pagination.CurrentPage, page.Pagination.TotalCount)
	}
}

func printTree(w io.Writer, node *models.Item, depth int) {
	marker := ""
	if node.IsFolder() {
		marker = "/"
	}
	fmt.Fprintf(w, "%s%s%s  (%s)\n", strings.Repeat("  ", depth), displayName(node), marker, node.ID)
	for _, child := range node.Children {
		printTree(w, child, depth+1)
	}
}
