// Package api contains the request contracts of the dashboard HTTP API.
// Version v1 represents the current stable API version.
package api

import (
	"net/url"
	"strconv"
	"strings"
)

// MaxKeywordLength bounds search keywords.
const MaxKeywordLength = 200

// MaxTopN bounds the number of ranked rows a client may ask for.
const MaxTopN = 1000

// SearchQuery is the query of GET /api/sessions/{id}/search.
type SearchQuery struct {
	Keyword string `json:"q" query:"q" validate:"max=200,nocontrol"`
}

// GroupsQuery is the query of GET /api/sessions/{id}/groups. Top 0 returns
// every group.
type GroupsQuery struct {
	By    string `json:"by" query:"by" validate:"required,max=200,nocontrol"`
	Value string `json:"value" query:"value" validate:"required,max=200,nocontrol"`
	Top   int    `json:"top" query:"top" validate:"gte=0,lte=1000"`
}

// TopQuery is the query of GET /api/sessions/{id}/top. Top 0 returns every
// asset.
type TopQuery struct {
	By  string `json:"by" query:"by" validate:"required,max=200,nocontrol"`
	Top int    `json:"top" query:"top" validate:"gte=0,lte=1000"`
}

// ReportQuery is the query of GET /api/sessions/{id}/report. An empty
// keyword leaves the search section out.
type ReportQuery struct {
	Keyword string `json:"q" query:"q" validate:"max=200,nocontrol"`
}

// QueryError reports a query parameter that is not a valid integer.
type QueryError struct {
	Param string
	Value string
}

func (e *QueryError) Error() string {
	return e.Param + " must be a valid integer, got " + strconv.Quote(e.Value)
}

// ParseSearchQuery reads a SearchQuery. The keyword is kept verbatim since
// surrounding spaces take part in the substring match.
func ParseSearchQuery(values url.Values) SearchQuery {
	return SearchQuery{Keyword: values.Get("q")}
}

// ParseReportQuery reads a ReportQuery.
func ParseReportQuery(values url.Values) ReportQuery {
	return ReportQuery{Keyword: values.Get("q")}
}

// ParseGroupsQuery reads a GroupsQuery; value and top fall back to the given
// defaults when absent.
func ParseGroupsQuery(values url.Values, defaultValue string, defaultTop int) (GroupsQuery, error) {
	q := GroupsQuery{
		By:    strings.TrimSpace(values.Get("by")),
		Value: strings.TrimSpace(values.Get("value")),
	}
	if q.Value == "" {
		q.Value = defaultValue
	}
	top, err := intParam(values, "top", defaultTop)
	q.Top = top
	return q, err
}

// ParseTopQuery reads a TopQuery; top falls back to defaultTop when absent.
func ParseTopQuery(values url.Values, defaultTop int) (TopQuery, error) {
	top, err := intParam(values, "top", defaultTop)
	return TopQuery{By: strings.TrimSpace(values.Get("by")), Top: top}, err
}

func intParam(values url.Values, param string, def int) (int, error) {
	raw := strings.TrimSpace(values.Get(param))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def, &QueryError{Param: param, Value: raw}
	}
	return v, nil
}
