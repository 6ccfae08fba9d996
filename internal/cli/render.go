package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mesh-intelligence/rentals/internal/store"
	"github.com/mesh-intelligence/rentals/pkg/types"
)

// markerGlyph flags the recently updated row.
const markerGlyph = "*"

func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(out))
	return nil
}

func renderBanner(w io.Writer, b *store.Banner) {
	if b == nil {
		return
	}
	switch b.Kind {
	case store.BannerError:
		fmt.Fprintln(w, "Error:", b.Message)
	default:
		fmt.Fprintln(w, b.Message)
	}
}

func marker(id, recent types.ID) string {
	if !recent.IsZero() && id == recent {
		return markerGlyph
	}
	return ""
}

func yesNo(v bool) string {
	if v {
		return "sí"
	}
	return "no"
}

func renderApartments(w io.Writer, snap store.Snapshot[types.Apartment]) {
	renderBanner(w, snap.Banner)
	if len(snap.Items) == 0 {
		fmt.Fprintln(w, "No hay apartamentos registrados")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tNÚMERO\tNIVEL\tESTADO\tCONTRATOS\tOCUPADO")
	for _, a := range snap.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			marker(a.ID, snap.RecentlyUpdated), a.ID, a.Number, a.Level, a.Status,
			a.ContractsCount, yesNo(a.HasActiveContract))
	}
	tw.Flush()
}

func renderContracts(w io.Writer, snap store.Snapshot[types.Contract]) {
	renderBanner(w, snap.Banner)
	if len(snap.Items) == 0 {
		fmt.Fprintln(w, "No hay contratos registrados")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tAPARTAMENTO\tINICIO\tFIN\tESTADO")
	for _, c := range snap.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			marker(c.ID, snap.RecentlyUpdated), c.ID, c.ApartmentLabel(),
			c.StartDate, c.EndDate, c.State())
	}
	tw.Flush()
}
