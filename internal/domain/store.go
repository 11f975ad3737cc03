package domain

import (
	"errors"
	"strings"
)

// Store is a salon branch.
type Store struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Images        []string `json:"images"`
	Phone         string   `json:"phone"`
	Address       string   `json:"address,omitempty"`
	CityProvince  string   `json:"cityProvince"`
	District      string   `json:"district"`
	OpeningTime   string   `json:"openingTime"`
	ClosingTime   string   `json:"closingTime"`
	Description   string   `json:"description,omitempty"`
	AverageRating float64  `json:"averageRating"`
}

// Normalize trims text fields and rejects stores without an id or name.
func (s *Store) Normalize() error {
	if s.ID <= 0 {
		return errors.New("store id must be positive")
	}
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return errors.New("store name is required")
	}
	s.CityProvince = strings.TrimSpace(s.CityProvince)
	s.District = strings.TrimSpace(s.District)
	s.Address = strings.TrimSpace(s.Address)
	if s.Images == nil {
		s.Images = []string{}
	}
	return nil
}

// ParentService is the catalog entry a StoreService prices.
type ParentService struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"durationMinutes"`
	Image           string `json:"image,omitempty"`
	Description     string `json:"description,omitempty"`
}

// StoreService is a service offered at a specific store.
type StoreService struct {
	ID            int64         `json:"id"`
	Service       ParentService `json:"service"`
	Price         float64       `json:"price"`
	AverageRating float64       `json:"averageRating"`
	TotalReviews  int           `json:"totalReviews"`
}

// Normalize rejects malformed services and clamps negative numbers.
func (s *StoreService) Normalize() error {
	if s.ID <= 0 {
		return errors.New("store service id must be positive")
	}
	s.Service.Name = strings.TrimSpace(s.Service.Name)
	if s.Service.Name == "" {
		return errors.New("service name is required")
	}
	if s.Price < 0 {
		return errors.New("service price must not be negative")
	}
	if s.Service.DurationMinutes < 0 {
		s.Service.DurationMinutes = 0
	}
	if s.TotalReviews < 0 {
		s.TotalReviews = 0
	}
	return nil
}

// Employee is a stylist working at a store.
type Employee struct {
	ID        int64  `json:"id"`
	FullName  string `json:"fullName"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

func (e *Employee) Normalize() error {
	if e.ID <= 0 {
		return errors.New("employee id must be positive")
	}
	e.FullName = strings.TrimSpace(e.FullName)
	return nil
}
