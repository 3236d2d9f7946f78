package result

// EnrichmentStatus tells whether page counts could be fetched.
type EnrichmentStatus string

// Enrichment statuses.
const (
	StatusEnriched    EnrichmentStatus = "enriched"
	StatusUnavailable EnrichmentStatus = "unavailable"
)

// Enrichment is the outcome of a page-count lookup. Lookups are best-effort,
// so an unavailable enrichment is a value, not an error.
type Enrichment struct {
	status EnrichmentStatus
	counts map[int]int
}

// Enriched wraps page counts keyed by document id.
func Enriched(counts map[int]int) Enrichment {
	return Enrichment{status: StatusEnriched, counts: counts}
}

// EnrichmentUnavailable is the outcome of a failed lookup.
func EnrichmentUnavailable() Enrichment {
	return Enrichment{status: StatusUnavailable}
}

// Status returns the lookup outcome.
func (e Enrichment) Status() EnrichmentStatus {
	if e.status == "" {
		return StatusUnavailable
	}
	return e.status
}

// PageCount returns the count for a document, 0 when unknown.
func (e Enrichment) PageCount(id int) int {
	return e.counts[id]
}
