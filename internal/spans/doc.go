// Package spans holds the pure highlight-span algorithms used by the reader:
// overlap resolution for a newly drawn range, note re-homing after a
// resolution, and rendering a paragraph into styled runs.
//
// Offsets are UTF-16 code units, matching the reader clients. All functions
// here are free of I/O; persistence lives in the highlights package.
//
//	res := spans.Resolve(existing, 3, 10, 25, spans.UUIDGenerator{})
//	link := spans.Relink(res, newSpan)
//	runs := spans.Render(paragraph, spans.ForParagraph(link.Spans, 3))
package spans
