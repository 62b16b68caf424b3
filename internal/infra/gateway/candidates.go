package gateway

import (
	"net/url"
	"strings"
)

// authPlacement says where the API key goes on a request.
type authPlacement int

const (
	authBearer authPlacement = iota // Authorization: Bearer <key>
	authQuery                       // ?api_key=<key>, no Authorization header
)

func (a authPlacement) String() string {
	if a == authQuery {
		return "query"
	}
	return "bearer"
}

// shape builds one JSON body layout accepted by some gateway family.
type shape struct {
	name  string
	build func(to, text, sender string) map[string]string
}

var shapes = []shape{
	{name: "to+text", build: func(to, text, _ string) map[string]string {
		return map[string]string{"to": to, "text": text}
	}},
	{name: "phone+message+sender", build: func(to, text, sender string) map[string]string {
		return map[string]string{"phone": to, "message": text, "sender": sender}
	}},
	{name: "number+body", build: func(to, text, _ string) map[string]string {
		return map[string]string{"number": to, "body": text}
	}},
}

// candidate is one (body shape, auth placement) pair tried during negotiation.
type candidate struct {
	shape shape
	auth  authPlacement
}

func (c candidate) String() string {
	return c.auth.String() + ":" + c.shape.name
}

// candidatesFor returns the ordered negotiation list for a gateway URL. Bearer
// candidates always come first; query-key candidates are appended only when the
// gateway host matches one of queryKeyHosts.
func candidatesFor(gatewayURL string, queryKeyHosts []string) []candidate {
	out := make([]candidate, 0, len(shapes)*2)
	for _, s := range shapes {
		out = append(out, candidate{shape: s, auth: authBearer})
	}
	if hostMatches(gatewayURL, queryKeyHosts) {
		for _, s := range shapes {
			out = append(out, candidate{shape: s, auth: authQuery})
		}
	}
	return out
}

func hostMatches(gatewayURL string, patterns []string) bool {
	u, err := url.Parse(gatewayURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if host == p || strings.HasSuffix(host, "."+p) {
			return true
		}
	}
	return false
}

// withAPIKey appends api_key to the gateway URL's query string.
func withAPIKey(gatewayURL, apiKey string) (string, error) {
	u, err := url.Parse(gatewayURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("api_key", apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
