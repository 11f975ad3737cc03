package catalog

import (
	"slices"
	"strings"

	"github.com/30-dung/salon-web/internal/domain"
)

// FilterByCity keeps the stores whose city matches exactly, ignoring case and
// surrounding whitespace. An empty city keeps everything.
func FilterByCity(stores []domain.Store, city string) []domain.Store {
	city = strings.TrimSpace(city)
	if city == "" {
		return stores
	}
	out := make([]domain.Store, 0, len(stores))
	for _, s := range stores {
		if strings.EqualFold(strings.TrimSpace(s.CityProvince), city) {
			out = append(out, s)
		}
	}
	return out
}

// SearchStores keeps the stores whose name or address contains the query,
// ignoring case.
func SearchStores(stores []domain.Store, query string) []domain.Store {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return stores
	}
	out := make([]domain.Store, 0, len(stores))
	for _, s := range stores {
		if strings.Contains(strings.ToLower(s.Name), query) || strings.Contains(strings.ToLower(address(s)), query) {
			out = append(out, s)
		}
	}
	return out
}

func address(s domain.Store) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{s.Address, s.District, s.CityProvince} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// ServiceSelection is the set of services picked on the service screen.
// In single mode selecting a service replaces the selection; in multi mode it
// toggles membership.
type ServiceSelection struct {
	Multi bool    `json:"multi"`
	IDs   []int64 `json:"ids"`
}

// Toggle selects or deselects a service.
func (s *ServiceSelection) Toggle(id int64) {
	if i := slices.Index(s.IDs, id); i >= 0 {
		s.IDs = slices.Delete(s.IDs, i, i+1)
		return
	}
	if !s.Multi {
		s.IDs = s.IDs[:0]
	}
	s.IDs = append(s.IDs, id)
}

// Has reports whether a service is selected.
func (s ServiceSelection) Has(id int64) bool {
	return slices.Contains(s.IDs, id)
}

// Empty reports whether nothing is selected.
func (s ServiceSelection) Empty() bool {
	return len(s.IDs) == 0
}
