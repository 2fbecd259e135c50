package dashboard

import "fmt"

// Tab is a dashboard section the operator can switch to.
type Tab int

const (
	TabDashboard Tab = iota
	TabMessages
	TabMarketplace
	TabFAQ
	TabAds
	TabProposals
)

var tabNames = [...]string{"dashboard", "messages", "marketplace", "faq", "ads", "proposals"}

func (t Tab) String() string {
	if t < 0 || int(t) >= len(tabNames) {
		return fmt.Sprintf("Tab(%d)", int(t))
	}
	return tabNames[t]
}

// ParseTab returns the Tab named s.
func ParseTab(s string) (Tab, error) {
	for i, name := range tabNames {
		if name == s {
			return Tab(i), nil
		}
	}
	return 0, fmt.Errorf("unknown tab %q", s)
}

func (t Tab) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Tab) UnmarshalText(b []byte) error {
	v, err := ParseTab(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Domains returns the collections loaded when t becomes active. The
// dashboard summary needs both message and listing counts.
func (t Tab) Domains() []Domain {
	return tabDomains[t]
}

var tabDomains = map[Tab][]Domain{
	TabDashboard:   {DomainMessages, DomainMarketplace},
	TabMessages:    {DomainMessages},
	TabMarketplace: {DomainMarketplace},
	TabFAQ:         {DomainFAQ},
	TabAds:         {DomainAds},
	TabProposals:   {DomainProposals},
}

// Domain is one of the managed collections.
type Domain int

const (
	DomainMessages Domain = iota
	DomainMarketplace
	DomainAds
	DomainFAQ
	DomainProposals

	domainCount = iota
)

var (
	domainNames  = [...]string{"messages", "marketplace", "ads", "faq", "proposals"}
	domainLabels = [...]string{"Message", "Listing", "Ads", "FAQ", "Proposal"}
)

// Domains lists every domain.
func Domains() []Domain {
	return []Domain{DomainMessages, DomainMarketplace, DomainAds, DomainFAQ, DomainProposals}
}

func (d Domain) String() string {
	if d < 0 || int(d) >= domainCount {
		return fmt.Sprintf("Domain(%d)", int(d))
	}
	return domainNames[d]
}

// Label prefixes inline error messages, e.g. "Listing Error: ...".
func (d Domain) Label() string {
	if d < 0 || int(d) >= domainCount {
		return d.String()
	}
	return domainLabels[d]
}

// ParseDomain returns the Domain named s.
func ParseDomain(s string) (Domain, error) {
	for i, name := range domainNames {
		if name == s {
			return Domain(i), nil
		}
	}
	return 0, fmt.Errorf("unknown domain %q", s)
}

func (d Domain) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Domain) UnmarshalText(b []byte) error {
	v, err := ParseDomain(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
