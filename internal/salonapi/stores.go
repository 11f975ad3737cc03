package salonapi

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/30-dung/salon-web/internal/domain"
)

// Stores lists every store.
func (c *Client) Stores(ctx context.Context) ([]domain.Store, error) {
	var stores []domain.Store
	if err := c.get(ctx, "Stores", "store/all", nil, &stores); err != nil {
		return nil, err
	}
	return decodeList(ctx, c.logger, "Stores", stores), nil
}

// Store fetches one store.
func (c *Client) Store(ctx context.Context, id int64) (*domain.Store, error) {
	var store domain.Store
	if err := c.get(ctx, "Store", idPath("store/%d", id), nil, &store); err != nil {
		return nil, err
	}
	return decodeOne("Store", &store)
}

// LocateStores lists the stores in a city, optionally narrowed to a district.
func (c *Client) LocateStores(ctx context.Context, city, district string) ([]domain.Store, error) {
	q := url.Values{}
	q.Set("cityProvince", city)
	if district != "" {
		q.Set("district", district)
	}
	var stores []domain.Store
	if err := c.get(ctx, "LocateStores", "store/locate", q, &stores); err != nil {
		return nil, err
	}
	return decodeList(ctx, c.logger, "LocateStores", stores), nil
}

// Cities lists the cities that have at least one store.
func (c *Client) Cities(ctx context.Context) ([]string, error) {
	var cities []string
	if err := c.get(ctx, "Cities", "store/cities", nil, &cities); err != nil {
		return nil, err
	}
	return compactNames(cities), nil
}

// Districts lists the districts of a city.
func (c *Client) Districts(ctx context.Context, city string) ([]string, error) {
	q := url.Values{}
	q.Set("cityProvince", city)
	var districts []string
	if err := c.get(ctx, "Districts", "store/districts", q, &districts); err != nil {
		return nil, err
	}
	return compactNames(districts), nil
}

// StoreServices lists the services a store offers.
func (c *Client) StoreServices(ctx context.Context, storeID int64) ([]domain.StoreService, error) {
	var services []domain.StoreService
	if err := c.get(ctx, "StoreServices", idPath("services/store/%d", storeID), nil, &services); err != nil {
		return nil, err
	}
	return decodeList(ctx, c.logger, "StoreServices", services), nil
}

// Employees lists the stylists of a store.
func (c *Client) Employees(ctx context.Context, storeID int64) ([]domain.Employee, error) {
	var employees []domain.Employee
	if err := c.get(ctx, "Employees", idPath("employees/store/%d", storeID), nil, &employees); err != nil {
		return nil, err
	}
	return decodeList(ctx, c.logger, "Employees", employees), nil
}

// AvailableSlots lists a stylist's slots on a date (YYYY-MM-DD).
func (c *Client) AvailableSlots(ctx context.Context, employeeID int64, date string) ([]domain.WorkingTimeSlot, error) {
	q := url.Values{}
	q.Set("employeeId", strconv.FormatInt(employeeID, 10))
	q.Set("date", date)
	var slots []domain.WorkingTimeSlot
	if err := c.get(ctx, "AvailableSlots", "working-time-slots/available", q, &slots); err != nil {
		return nil, err
	}
	return decodeList(ctx, c.logger, "AvailableSlots", slots), nil
}

// compactNames trims names and drops blanks and duplicates, keeping order.
func compactNames(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, n := range in {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
