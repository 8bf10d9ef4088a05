package analytics

import (
	"cmp"
	"net"
	"net/url"
	"slices"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/nao1215/linkboard/internal/model"
)

// DefaultDomainLimit caps the failing-domain list.
const DefaultDomainLimit = 10

// DomainCount is the number of broken links on one registrable domain.
type DomainCount struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
}

// FailingDomains groups broken links by registrable domain ("eTLD+1", so
// docs.example.co.uk and www.example.co.uk both count for example.co.uk)
// and returns the top n, most broken first. Hosts without a public suffix,
// such as IP addresses or localhost, are grouped under the bare host.
// Records whose URL has no host are skipped. n <= 0 means no limit.
func FailingDomains(links []model.BrokenLink, n int) []DomainCount {
	counts := make(map[string]int)
	for _, l := range links {
		if d, ok := registrableDomain(l.URL); ok {
			counts[d]++
		}
	}

	result := make([]DomainCount, 0, len(counts))
	for d, c := range counts {
		result = append(result, DomainCount{Domain: d, Count: c})
	}
	slices.SortFunc(result, func(a, b DomainCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Domain, b.Domain)
	})

	if n > 0 && len(result) > n {
		result = result[:n]
	}
	return result
}

func registrableDomain(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	host := strings.ToLower(strings.TrimSuffix(u.Hostname(), "."))
	if host == "" {
		return "", false
	}
	if net.ParseIP(host) != nil {
		return host, true
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host, true
	}
	return domain, true
}
