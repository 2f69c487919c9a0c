// Package feed fetches and parses GeoRSS/CAP hazard feeds into incidents.
package feed

import (
	"encoding/xml"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/safesignal/safesignal/internal/errors"
	"github.com/safesignal/safesignal/internal/models"
	"github.com/safesignal/safesignal/internal/severity"
	"github.com/safesignal/safesignal/pkg/utils"
)

// atomFeed represents an Atom-style feed (<feed><entry>...)
type atomFeed struct {
	XMLName xml.Name `xml:"feed"`
	Entries []entry  `xml:"entry"`
}

// rssFeed represents an RSS-style feed (<rss><channel><item>...)
type rssFeed struct {
	XMLName xml.Name `xml:"rss"`
	Items   []entry  `xml:"channel>item"`
}

// entry covers both Atom entries and RSS items. Tags match by local name
// only, so georss:point, geo:point and plain point all land in Point, and
// cap:identifier lands in Identifier.
type entry struct {
	ID          string  `xml:"id"`
	GUID        string  `xml:"guid"`
	Identifier  string  `xml:"identifier"`
	Title       string  `xml:"title"`
	Summary     string  `xml:"summary"`
	Description string  `xml:"description"`
	Updated     string  `xml:"updated"`
	Published   string  `xml:"published"`
	PubDate     string  `xml:"pubDate"`
	Point       string  `xml:"point"`
	Lat         string  `xml:"lat"`
	Long        string  `xml:"long"`
	Info        capInfo `xml:"info"`
}

// capInfo holds Common Alerting Protocol fields nested under cap:info.
type capInfo struct {
	Event     string  `xml:"event"`
	Severity  string  `xml:"severity"`
	Urgency   string  `xml:"urgency"`
	Effective string  `xml:"effective"`
	Onset     string  `xml:"onset"`
	Area      capArea `xml:"area"`
}

type capArea struct {
	Circle string `xml:"circle"`
}

// timeLayouts are tried in order when parsing entry timestamps.
var timeLayouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02T15:04:05",
}

// ParseIncidentFeed parses an Atom or RSS document into incidents. Entries
// without a resolvable id or coordinates are skipped; a document that is not
// parseable XML at all fails with a FeedParseError. The source label is
// attached to every incident as provenance; it is never read from the
// document itself.
func ParseIncidentFeed(data []byte, source string) ([]models.Incident, error) {
	entries, err := extractEntries(data)
	if err != nil {
		return nil, apperrors.FeedParseError{Source: source, Err: err}
	}

	incidents := make([]models.Incident, 0, len(entries))
	for _, e := range entries {
		inc, ok := buildIncident(e, source)
		if !ok {
			continue
		}
		incidents = append(incidents, inc)
	}

	return incidents, nil
}

// extractEntries accepts both feed shapes and concatenates their entries.
func extractEntries(data []byte) ([]entry, error) {
	var atom atomFeed
	atomErr := xml.Unmarshal(data, &atom)
	if atomErr == nil {
		return atom.Entries, nil
	}

	var rss rssFeed
	if err := xml.Unmarshal(data, &rss); err != nil {
		return nil, atomErr
	}
	return rss.Items, nil
}

// buildIncident maps a single entry to an incident. Returns false when the
// entry has no usable id or coordinates.
func buildIncident(e entry, source string) (models.Incident, bool) {
	id := utils.FirstNonEmpty(e.ID, e.GUID, e.Identifier, e.Title)
	if id == "" {
		return models.Incident{}, false
	}

	lat, lng, ok := parseCoordinates(e)
	if !ok {
		return models.Incident{}, false
	}

	title := strings.TrimSpace(e.Title)
	summary := utils.FirstNonEmpty(e.Summary, e.Description)

	incidentType := utils.FirstNonEmpty(e.Info.Event, title)
	rawSeverity := utils.FirstNonEmpty(e.Info.Severity, e.Info.Urgency, title, summary)

	return models.Incident{
		ID:        id,
		Type:      incidentType,
		Severity:  severity.Normalize(rawSeverity),
		Lat:       lat,
		Lng:       lng,
		StartedAt: parseStartedAt(e),
		Source:    source,
	}, true
}

// parseCoordinates resolves an entry's location, preferring a combined
// georss/geo point, then discrete lat/long tags, then the first two tokens
// of a CAP circle area.
func parseCoordinates(e entry) (float64, float64, bool) {
	if p := strings.TrimSpace(e.Point); p != "" {
		parts := strings.Fields(p)
		if len(parts) >= 2 {
			lat, latOK := parseFinite(parts[0])
			lng, lngOK := parseFinite(parts[1])
			if latOK && lngOK {
				return lat, lng, true
			}
		}
	}

	latRaw, lngRaw := e.Lat, e.Long
	if latRaw == "" || lngRaw == "" {
		tokens := strings.Fields(e.Info.Area.Circle)
		if len(tokens) >= 2 {
			latRaw, lngRaw = tokens[0], tokens[1]
		}
	}

	lat, latOK := parseFinite(latRaw)
	lng, lngOK := parseFinite(lngRaw)
	if !latOK || !lngOK {
		return 0, 0, false
	}
	return lat, lng, true
}

func parseFinite(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseStartedAt picks the entry's start time from the documented priority
// order. Returns nil when nothing parses.
func parseStartedAt(e entry) *time.Time {
	for _, raw := range []string{e.Updated, e.Published, e.PubDate, e.Info.Effective, e.Info.Onset} {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				t = t.UTC()
				return &t
			}
		}
	}
	return nil
}
