package city

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/FACorreiaa/city-info-api/internal/types"
)

var _ Repository = (*MemoryCityInfoRepository)(nil)

// MemoryCityInfoRepository is the volatile store variant, used for demos and
// tests. It satisfies the same contract as the Postgres implementation: the
// staged-change Save boundary, name-ordered city listings, insertion-ordered
// children and monotonic ids that are never reused within process lifetime.
type MemoryCityInfoRepository struct {
	logger *slog.Logger

	mu        sync.Mutex
	cities    map[int]types.City
	pois      map[int][]types.PointOfInterest
	nextPOIID int
	pending   []pendingChange
}

func NewMemoryRepository(logger *slog.Logger) *MemoryCityInfoRepository {
	r := &MemoryCityInfoRepository{
		logger: logger,
		cities: make(map[int]types.City),
		pois:   make(map[int][]types.PointOfInterest),
	}
	r.seed()
	return r
}

func ptr(s string) *string { return &s }

// seed loads the demo dataset once at startup.
func (r *MemoryCityInfoRepository) seed() {
	r.cities[1] = types.City{ID: 1, Name: "New York City", Description: "The one with that big park."}
	r.cities[2] = types.City{ID: 2, Name: "Antwerp", Description: "The one with the cathedral that never really finished."}
	r.cities[3] = types.City{ID: 3, Name: "Paris", Description: "The one with that big tower."}

	r.pois[1] = []types.PointOfInterest{
		{ID: 1, CityID: 1, Name: "Central Park", Description: ptr("The most visited urban park in the United States.")},
		{ID: 2, CityID: 1, Name: "Empire State Building", Description: ptr("A 102-story skyscraper located in Midtown Manhattan.")},
	}
	r.pois[2] = []types.PointOfInterest{
		{ID: 3, CityID: 2, Name: "Cathedral of Our Lady", Description: ptr("A Gothic style cathedral, conceived by architects Jan and Pieter Appelmans.")},
		{ID: 4, CityID: 2, Name: "Antwerp Central Station", Description: ptr("The finest example of railway architecture in Belgium.")},
	}
	r.pois[3] = []types.PointOfInterest{
		{ID: 5, CityID: 3, Name: "Eiffel Tower", Description: ptr("A wrought iron lattice tower on the Champ de Mars.")},
		{ID: 6, CityID: 3, Name: "The Louvre", Description: ptr("The world's largest museum.")},
	}
	r.nextPOIID = 7
}

func (r *MemoryCityInfoRepository) GetCities(ctx context.Context) ([]types.City, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cities := make([]types.City, 0, len(r.cities))
	for _, c := range r.cities {
		cities = append(cities, c)
	}
	sort.Slice(cities, func(i, j int) bool { return cities[i].Name < cities[j].Name })
	return cities, nil
}

func (r *MemoryCityInfoRepository) GetCity(ctx context.Context, cityID int, includePointsOfInterest bool) (*types.City, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.cities[cityID]
	if !ok {
		return nil, nil
	}
	if includePointsOfInterest {
		c.PointsOfInterest = copyPOIs(r.pois[cityID])
	}
	return &c, nil
}

func (r *MemoryCityInfoRepository) CityExists(ctx context.Context, cityID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.cities[cityID]
	return ok, nil
}

func (r *MemoryCityInfoRepository) GetPointsOfInterestForCity(ctx context.Context, cityID int) ([]types.PointOfInterest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return copyPOIs(r.pois[cityID]), nil
}

func (r *MemoryCityInfoRepository) GetPointOfInterestForCity(ctx context.Context, cityID, poiID int) (*types.PointOfInterest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.pois[cityID] {
		if p.ID == poiID {
			found := p
			return &found, nil
		}
	}
	return nil, nil
}

func (r *MemoryCityInfoRepository) AddPointOfInterestForCity(ctx context.Context, cityID int, poi *types.PointOfInterest) error {
	poi.CityID = cityID
	r.stage(pendingChange{kind: changeAddPOI, cityID: cityID, poi: poi})
	return nil
}

func (r *MemoryCityInfoRepository) UpdatePointOfInterestForCity(ctx context.Context, poi *types.PointOfInterest) error {
	r.stage(pendingChange{kind: changeUpdatePOI, cityID: poi.CityID, poi: poi})
	return nil
}

func (r *MemoryCityInfoRepository) DeletePointOfInterest(ctx context.Context, poi *types.PointOfInterest) error {
	r.stage(pendingChange{kind: changeDeletePOI, cityID: poi.CityID, poi: poi})
	return nil
}

func (r *MemoryCityInfoRepository) DeleteCity(ctx context.Context, cityID int) error {
	r.stage(pendingChange{kind: changeDeleteCity, cityID: cityID})
	return nil
}

func (r *MemoryCityInfoRepository) stage(c pendingChange) {
	r.mu.Lock()
	r.pending = append(r.pending, c)
	r.mu.Unlock()
}

func (r *MemoryCityInfoRepository) Save(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.pending) == 0 {
		return false, nil
	}
	pending := r.pending
	r.pending = nil

	changed := 0
	for _, c := range pending {
		switch c.kind {
		case changeAddPOI:
			// Ids are assigned from a counter that only ever moves forward,
			// so a deleted id can never come back.
			c.poi.ID = r.nextPOIID
			r.nextPOIID++
			r.pois[c.cityID] = append(r.pois[c.cityID], *c.poi)
			changed++
		case changeUpdatePOI:
			list := r.pois[c.cityID]
			for i := range list {
				if list[i].ID == c.poi.ID {
					list[i] = *c.poi
					changed++
					break
				}
			}
		case changeDeletePOI:
			list := r.pois[c.cityID]
			for i := range list {
				if list[i].ID == c.poi.ID {
					r.pois[c.cityID] = append(list[:i], list[i+1:]...)
					changed++
					break
				}
			}
		case changeDeleteCity:
			if _, ok := r.cities[c.cityID]; ok {
				changed += len(r.pois[c.cityID]) + 1
				delete(r.pois, c.cityID)
				delete(r.cities, c.cityID)
			}
		}
	}

	r.logger.DebugContext(ctx, "Applied staged changes to memory store",
		slog.Int("staged", len(pending)), slog.Int("changed", changed))
	return changed > 0, nil
}

func copyPOIs(src []types.PointOfInterest) []types.PointOfInterest {
	dst := make([]types.PointOfInterest, len(src))
	copy(dst, src)
	return dst
}
