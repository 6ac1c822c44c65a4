package usecase

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"netcrm-backend/internal/contact/domain"
	"netcrm-backend/internal/contact/dto"
)

// FindDuplicates scans the user's contacts pairwise. A pair is flagged when
// the two share an email address, or when their normalized names are within a
// small edit distance of each other. The threshold scales with name length so
// short names need an exact or near-exact match.
func (u *contactUsecase) FindDuplicates(userID string) ([]*dto.DuplicatePair, error) {
	contacts, err := u.contactRepo.FindAllByUser(userID)
	if err != nil {
		return nil, err
	}

	var pairs []*dto.DuplicatePair
	for i := 0; i < len(contacts); i++ {
		for j := i + 1; j < len(contacts); j++ {
			if pair := scorePair(contacts[i], contacts[j]); pair != nil {
				pairs = append(pairs, pair)
			}
		}
	}

	sort.Slice(pairs, func(a, b int) bool {
		return pairs[a].Score > pairs[b].Score
	})
	return pairs, nil
}

func scorePair(a, b *domain.Contact) *dto.DuplicatePair {
	if sharesEmail(a, b) {
		return &dto.DuplicatePair{
			Contact:   a,
			Duplicate: b,
			Reason:    "shared_email",
			Score:     1.0,
		}
	}

	nameA := normalizeName(a.Name)
	nameB := normalizeName(b.Name)
	if nameA == "" || nameB == "" {
		return nil
	}

	distance := levenshtein.ComputeDistance(nameA, nameB)
	longer := len(nameA)
	if len(nameB) > longer {
		longer = len(nameB)
	}
	if distance > nameThreshold(longer) {
		return nil
	}

	score := 1.0 - float64(distance)/float64(longer)
	// Matching companies make a near-name collision much more likely to be
	// the same person.
	if a.Company != "" && strings.EqualFold(a.Company, b.Company) {
		score += 0.1
		if score > 1.0 {
			score = 1.0
		}
	}

	return &dto.DuplicatePair{
		Contact:   a,
		Duplicate: b,
		Reason:    "similar_name",
		Score:     score,
	}
}

// nameThreshold allows one edit per four characters, between 1 and 3.
func nameThreshold(length int) int {
	t := length / 4
	if t < 1 {
		t = 1
	}
	if t > 3 {
		t = 3
	}
	return t
}

func sharesEmail(a, b *domain.Contact) bool {
	for _, e := range a.AllEmails() {
		if b.HasEmail(e) {
			return true
		}
	}
	return false
}

func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// FuzzySearch matches substrings of name, email or company first, then names
// and companies within edit distance of the query, ranked by closeness.
func (u *contactUsecase) FuzzySearch(userID, query string, limit int) ([]*domain.Contact, error) {
	query = normalizeName(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	contacts, err := u.contactRepo.FindAllByUser(userID)
	if err != nil {
		return nil, err
	}

	type scored struct {
		contact *domain.Contact
		score   float64
	}
	var matches []scored
	for _, contact := range contacts {
		name := normalizeName(contact.Name)
		company := normalizeName(contact.Company)
		if name == "" && company == "" {
			continue
		}
		if (name != "" && strings.Contains(name, query)) ||
			strings.Contains(strings.ToLower(contact.Email), query) ||
			(company != "" && strings.Contains(company, query)) {
			matches = append(matches, scored{contact, 1.0})
			continue
		}

		best := len(query) + 1
		// Try each word of the name and company so "jon" finds "Jon Snow"
		// and "globex" finds "Globex Corp".
		for _, field := range []string{name, company} {
			if field == "" {
				continue
			}
			if d := levenshtein.ComputeDistance(field, query); d < best {
				best = d
			}
			for _, word := range strings.Fields(field) {
				if d := levenshtein.ComputeDistance(word, query); d < best {
					best = d
				}
			}
		}
		if best <= nameThreshold(len(query)) {
			matches = append(matches, scored{contact, 1.0 - float64(best)/float64(len(query)+1)})
		}
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].score > matches[b].score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]*domain.Contact, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.contact)
	}
	return out, nil
}
