// Package profile implements the profile transformation performed by the
// benchmarked endpoint: parsing a submitted profile, deriving its projection,
// and serving both over HTTP.
package profile

import (
	"strings"
	"time"
	"unicode"
)

// Request is a profile submitted for processing.
type Request struct {
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Age       int      `json:"age"`
	Interests []string `json:"interests"`
}

// Profile is the processed projection of a Request.
type Profile struct {
	FullName      string `json:"full_name"`
	EmailDomain   string `json:"email_domain"`
	AgeGroup      string `json:"age_group"`
	InterestCount int    `json:"interest_count"`
	ProfileScore  int    `json:"profile_score"`
	CreatedAt     string `json:"created_at"`
}

// Response is the success envelope returned by the endpoint.
type Response struct {
	Message          string  `json:"message"`
	OriginalInput    Request `json:"original_input"`
	ProcessedProfile Profile `json:"processed_profile"`
}

// Age group labels derived from Request.Age.
const (
	AgeGroupMinor  = "minor"
	AgeGroupAdult  = "adult"
	AgeGroupSenior = "senior"
)

// Process derives the profile projection for a request. The transformation is
// deterministic apart from CreatedAt, which is stamped from now.
func Process(req Request, now time.Time) Profile {
	return Profile{
		FullName:      titleCase(req.Name),
		EmailDomain:   emailDomain(req.Email),
		AgeGroup:      ageGroup(req.Age),
		InterestCount: len(req.Interests),
		ProfileScore:  score(req),
		CreatedAt:     now.UTC().Format(time.RFC3339),
	}
}

// titleCase normalizes a name to one space between words with each word
// capitalized.
func titleCase(name string) string {
	words := strings.Fields(name)
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// emailDomain extracts the lowercased domain after the last "@". An address
// without a domain yields "".
func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}

func ageGroup(age int) string {
	switch {
	case age < 18:
		return AgeGroupMinor
	case age < 65:
		return AgeGroupAdult
	default:
		return AgeGroupSenior
	}
}

// score rates profile completeness on a 0..100 scale: 25 points each for a
// name and a routable email, 20 for a positive age, and 10 per interest up to
// three.
func score(req Request) int {
	total := 0
	if strings.TrimSpace(req.Name) != "" {
		total += 25
	}
	if emailDomain(req.Email) != "" {
		total += 25
	}
	if req.Age > 0 {
		total += 20
	}
	interests := len(req.Interests)
	if interests > 3 {
		interests = 3
	}
	total += 10 * interests
	return total
}
