package editor

import "fmt"

// ImageMarkdown formats a data URI as an inline image.
func ImageMarkdown(dataURI string) string {
	return fmt.Sprintf("![Image](%s)", dataURI)
}

// InsertImage embeds dataURI into blockID when it is an empty text block,
// otherwise into a new block right after it. The receiving block is focused
// with the caret at its end.
func (h *Handler) InsertImage(blockID, dataURI string) error {
	idx := h.store.Index(blockID)
	if idx < 0 {
		return fmt.Errorf("insert image into %s: %w", blockID, ErrBlockNotFound)
	}
	md := ImageMarkdown(dataURI)
	b := h.store.blocks[idx]
	if b.Kind == KindText && b.Content == "" {
		if err := h.store.UpdateBlockContent(b.ID, md); err != nil {
			return err
		}
		h.store.RequestCursor(b.ID, runeLen(md))
		return nil
	}
	nb, err := h.store.InsertAfter(idx, Block{Content: md, Kind: KindText})
	if err != nil {
		return err
	}
	h.store.RequestCursor(nb.ID, runeLen(md))
	return nil
}
