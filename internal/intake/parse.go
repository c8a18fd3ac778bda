package intake

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"talentsol-engine/internal/config"
	"talentsol-engine/internal/domain"
)

var (
	reEmail = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	rePhone = regexp.MustCompile(`(\+?\d[\d\s().\-]{7,}\d)`)
	reYears = regexp.MustCompile(`(?i)(\d{1,2})\+?\s*(?:years?|yrs?)`)
	reURL   = regexp.MustCompile(`https?://[^\s<>"']+`)
)

// ParseMessage turns a raw inbound mail into a candidate profile plus the
// message id used for dedupe. Display name and address come from the From
// header; the body is mined for phone, experience, education, skills, and a
// portfolio link.
func ParseMessage(m Message, cfg config.Config) (profile domain.CandidateProfile, messageID string, ok bool) {
	messageID, bodyText := parseRFC822(m.RawMessage)

	from := strings.TrimSpace(m.From)
	addr, name := splitFrom(from, m.RawMessage)
	if addr == "" {
		addr = firstMatch(reEmail, bodyText)
	}
	if addr == "" {
		return domain.CandidateProfile{}, messageID, false
	}

	first, last := splitName(name)
	if first == "" {
		// fall back to the mailbox part of the address
		local := addr
		if i := strings.IndexByte(local, '@'); i >= 0 {
			local = local[:i]
		}
		first = titleCase(strings.ReplaceAll(strings.ReplaceAll(local, ".", " "), "_", " "))
	}

	profile = domain.CandidateProfile{
		FirstName:  first,
		LastName:   last,
		Email:      strings.ToLower(addr),
		Phone:      strings.TrimSpace(firstMatch(rePhone, bodyText)),
		ResumeText: bodyText,
		Source:     "email",
	}

	lower := strings.ToLower(bodyText)

	if ms := reYears.FindStringSubmatch(bodyText); len(ms) == 2 {
		if n, err := strconv.Atoi(ms[1]); err == nil && n <= 60 {
			profile.YearsExperience = n
		}
	}

	profile.EducationLevel = detectEducation(lower)
	profile.CoverLetter = len(strings.Fields(bodyText)) >= 50

	for _, u := range reURL.FindAllString(bodyText, -1) {
		lu := strings.ToLower(u)
		if strings.Contains(lu, "github.") || strings.Contains(lu, "portfolio") || strings.Contains(lu, "linkedin.") {
			profile.PortfolioURL = strings.TrimRight(u, ".,);:]\"'")
			break
		}
	}

	// skills: match the configured rule vocabulary against the body
	seen := map[string]bool{}
	for _, r := range cfg.Scoring.SkillRules {
		for _, term := range r.Any {
			t := strings.ToLower(term)
			if strings.Contains(lower, t) && !seen[t] {
				seen[t] = true
				profile.Skills = append(profile.Skills, t)
			}
		}
	}

	return profile, messageID, true
}

// SubjectMatches applies the configured subject filter; an empty filter
// matches everything.
func SubjectMatches(subject string, anyOf []string) bool {
	if len(anyOf) == 0 {
		return true
	}
	s := strings.ToLower(subject)
	for _, needle := range anyOf {
		if strings.Contains(s, strings.ToLower(needle)) {
			return true
		}
	}
	return false
}

func detectEducation(lower string) string {
	switch {
	case strings.Contains(lower, "phd") || strings.Contains(lower, "ph.d") || strings.Contains(lower, "doctorate"):
		return "phd"
	case strings.Contains(lower, "master") || strings.Contains(lower, "m.sc") || strings.Contains(lower, "mba"):
		return "master"
	case strings.Contains(lower, "bachelor") || strings.Contains(lower, "b.sc") || strings.Contains(lower, "b.s."):
		return "bachelor"
	case strings.Contains(lower, "high school"):
		return "high_school"
	}
	return ""
}

func splitFrom(from string, raw []byte) (addr, name string) {
	if a, err := mail.ParseAddress(from); err == nil {
		return a.Address, a.Name
	}
	if msg, err := mail.ReadMessage(bytes.NewReader(raw)); err == nil {
		if a, err := mail.ParseAddress(msg.Header.Get("From")); err == nil {
			return a.Address, a.Name
		}
	}
	// from may already be a bare address
	if reEmail.MatchString(from) {
		return reEmail.FindString(from), ""
	}
	return "", from
}

func splitName(name string) (first, last string) {
	fields := strings.Fields(strings.TrimSpace(name))
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

func firstMatch(re *regexp.Regexp, s string) string {
	return re.FindString(s)
}

func titleCase(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		fields[i] = strings.ToUpper(f[:1]) + f[1:]
	}
	return strings.Join(fields, " ")
}

// parseRFC822 extracts the message id and a plaintext body. HTML-only
// messages go through goquery to strip markup.
func parseRFC822(raw []byte) (messageID, bodyText string) {
	if len(raw) == 0 {
		return "", ""
	}

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		// treat raw as plaintext best-effort
		return "", string(raw)
	}

	messageID = strings.TrimSpace(msg.Header.Get("Message-Id"))
	if messageID == "" {
		messageID = strings.TrimSpace(msg.Header.Get("Message-ID"))
	}

	bodyRaw, _ := io.ReadAll(io.LimitReader(msg.Body, 6<<20))

	plain, htmlPart := extractMIMETextParts(msg.Header, bodyRaw)
	if plain != "" {
		return messageID, plain
	}
	if htmlPart != "" {
		return messageID, htmlToText(htmlPart)
	}
	return messageID, string(bodyRaw)
}

func extractMIMETextParts(h mail.Header, body []byte) (plain, htmlPart string) {
	ct := h.Get("Content-Type")
	cte := strings.ToLower(strings.TrimSpace(h.Get("Content-Transfer-Encoding")))

	mediaType, params, err := mime.ParseMediaType(ct)
	if err != nil {
		return string(decodeTransferEncoding(body, cte)), ""
	}
	mediaType = strings.ToLower(mediaType)

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return string(decodeTransferEncoding(body, cte)), ""
		}
		mr := multipart.NewReader(bytes.NewReader(body), boundary)

		var bestPlain, bestHTML string
		for {
			p, err := mr.NextPart()
			if err != nil {
				break
			}
			partCTE := strings.ToLower(strings.TrimSpace(p.Header.Get("Content-Transfer-Encoding")))
			pMedia, _, _ := mime.ParseMediaType(p.Header.Get("Content-Type"))
			pMedia = strings.ToLower(pMedia)

			b, _ := io.ReadAll(io.LimitReader(p, 4<<20))
			b = decodeTransferEncoding(b, partCTE)

			if strings.HasPrefix(pMedia, "multipart/") {
				pl, ht := extractMIMETextParts(mail.Header(p.Header), b)
				if len(pl) > len(bestPlain) {
					bestPlain = pl
				}
				if len(ht) > len(bestHTML) {
					bestHTML = ht
				}
				continue
			}

			switch {
			case strings.HasPrefix(pMedia, "text/plain"):
				if len(b) > len(bestPlain) {
					bestPlain = string(b)
				}
			case strings.HasPrefix(pMedia, "text/html"):
				if len(b) > len(bestHTML) {
					bestHTML = string(b)
				}
			}
		}
		return bestPlain, bestHTML
	}

	s := decodeTransferEncoding(body, cte)
	if strings.HasPrefix(mediaType, "text/html") {
		return "", string(s)
	}
	return string(s), ""
}

func decodeTransferEncoding(b []byte, cte string) []byte {
	switch cte {
	case "base64":
		dec := base64.NewDecoder(base64.StdEncoding, bytes.NewReader(b))
		out, _ := io.ReadAll(io.LimitReader(dec, 6<<20))
		return out
	case "quoted-printable":
		dec := quotedprintable.NewReader(bytes.NewReader(b))
		out, _ := io.ReadAll(io.LimitReader(dec, 6<<20))
		return out
	default:
		return b
	}
}

func htmlToText(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	doc.Find("script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}
