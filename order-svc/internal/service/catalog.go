package service

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"flash-delivery/order-svc/internal/domain"
)

//go:embed catalog.json
var defaultCatalog []byte

const searchFallbackSize = 6

type catalogFile struct {
	Categories []domain.Category `json:"categories"`
	Stores     []domain.Store    `json:"stores"`
	Menus      []domain.MenuItem `json:"menus"`
	Sections   []sectionFile     `json:"sections"`
}

type sectionFile struct {
	StoreID     int    `json:"store_id"`
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	MenuIDs     []int  `json:"menu_ids"`
}

// Catalog is the read-only menu and store data. It is loaded once at startup.
type Catalog struct {
	categories []domain.Category
	stores     []domain.Store
	menus      []domain.MenuItem
	menuByID   map[int]domain.MenuItem
	sections   map[int][]sectionFile
}

// LoadCatalog reads the catalog from path, or the built-in seed when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return ParseCatalog(defaultCatalog)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{
		categories: file.Categories,
		stores:     file.Stores,
		menus:      make([]domain.MenuItem, 0, len(file.Menus)),
		menuByID:   make(map[int]domain.MenuItem, len(file.Menus)),
		sections:   make(map[int][]sectionFile),
	}
	for _, item := range file.Menus {
		if _, dup := c.menuByID[item.ID]; dup {
			return nil, fmt.Errorf("parse catalog: duplicate menu id %d", item.ID)
		}
		if item.Options == nil {
			item.Options = []domain.Option{}
		}
		c.menuByID[item.ID] = item
		c.menus = append(c.menus, item)
	}
	for _, section := range file.Sections {
		c.sections[section.StoreID] = append(c.sections[section.StoreID], section)
	}
	return c, nil
}

func (c *Catalog) Menu(id int) (domain.MenuItem, bool) {
	item, ok := c.menuByID[id]
	return item, ok
}

// Menus returns every menu item in catalog order.
func (c *Catalog) Menus() []domain.MenuItem {
	out := make([]domain.MenuItem, len(c.menus))
	copy(out, c.menus)
	return out
}

func (c *Catalog) Categories() []domain.Category {
	out := make([]domain.Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// Stores lists stores, optionally filtered by category id.
func (c *Catalog) Stores(category string) []domain.Store {
	out := make([]domain.Store, 0, len(c.stores))
	for _, store := range c.stores {
		if category == "" || containsString(store.Categories, category) {
			out = append(out, store)
		}
	}
	return out
}

// SearchStores matches q against store names, descriptions and tags.
// An empty query returns the first few stores.
func (c *Catalog) SearchStores(q string) []domain.Store {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		n := len(c.stores)
		if n > searchFallbackSize {
			n = searchFallbackSize
		}
		out := make([]domain.Store, n)
		copy(out, c.stores[:n])
		return out
	}

	out := []domain.Store{}
	for _, store := range c.stores {
		if strings.Contains(strings.ToLower(store.Name), q) ||
			strings.Contains(strings.ToLower(store.Description), q) ||
			matchesAny(store.Tags, q) {
			out = append(out, store)
		}
	}
	return out
}

func (c *Catalog) Store(id int) (domain.Store, bool) {
	for _, store := range c.stores {
		if store.ID == id {
			return store, true
		}
	}
	return domain.Store{}, false
}

// StoreMenu returns the sections of a store with their items resolved.
// Unknown menu ids in a section are skipped.
func (c *Catalog) StoreMenu(storeID int) ([]domain.MenuSection, bool) {
	if _, ok := c.Store(storeID); !ok {
		return nil, false
	}
	sections := c.sections[storeID]
	out := make([]domain.MenuSection, 0, len(sections))
	for _, s := range sections {
		section := domain.MenuSection{
			ID:          s.ID,
			Title:       s.Title,
			Description: s.Description,
			Items:       make([]domain.MenuItem, 0, len(s.MenuIDs)),
		}
		for _, id := range s.MenuIDs {
			if item, ok := c.menuByID[id]; ok {
				section.Items = append(section.Items, item)
			}
		}
		out = append(out, section)
	}
	return out, true
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func matchesAny(values []string, q string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	return false
}
