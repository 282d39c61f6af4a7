package extract

import (
	"log/slog"

	"github.com/henarth-agravat/stockcard/internal/statement"
)

// NoticeReason classifies an extraction degradation point.
type NoticeReason string

const (
	NoticeParseFailed    NoticeReason = "parse_failed"
	NoticeSectionMissing NoticeReason = "section_missing"
	NoticeTableMissing   NoticeReason = "table_missing"
)

// Notice is a structured diagnostic emitted each time a section degrades to
// an empty result. Row-level drops are expected noise and never noticed.
type Notice struct {
	Section statement.SectionID
	Reason  NoticeReason
	Detail  string
}

// NoticeFunc receives extraction notices. A nil NoticeFunc drops them.
type NoticeFunc func(Notice)

// SlogNotices returns a NoticeFunc that logs each notice at warn level.
func SlogNotices(log *slog.Logger) NoticeFunc {
	return func(n Notice) {
		log.Warn("extraction degraded",
			"section", n.Section,
			"reason", n.Reason,
			"detail", n.Detail,
		)
	}
}
