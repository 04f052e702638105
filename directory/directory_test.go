package directory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketing/directory"
	"ticketing/entity"
)

var eventDate = time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)

func newVenue(t *testing.T, d *directory.Directory, capacity int) *entity.Venue {
	t.Helper()

	v, err := d.CreateVenue(directory.VenueInput{Name: "Town Hall", Capacity: capacity})
	require.NoError(t, err)
	return v
}

func newEvent(t *testing.T, d *directory.Directory, venueID string, categories ...directory.CategoryInput) *entity.Event {
	t.Helper()

	e, err := d.CreateEvent(directory.EventInput{
		Name:       "Opening Night",
		Date:       eventDate,
		VenueID:    venueID,
		Categories: categories,
	})
	require.NoError(t, err)
	return e
}

func TestDirectory_CreateVenue(t *testing.T) {
	d := directory.New()

	v, err := d.CreateVenue(directory.VenueInput{Name: "Town Hall", Address: "1 Main St", Capacity: 500})
	require.NoError(t, err)
	assert.NotEmpty(t, v.ID)

	got, err := d.GetVenue(v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Town Hall", got.Name)
	assert.Equal(t, 500, got.Capacity)

	_, err = d.CreateVenue(directory.VenueInput{Name: "", Capacity: 10})
	assert.Error(t, err)

	_, err = d.GetVenue("missing")
	assert.ErrorIs(t, err, entity.ErrVenueNotFound)
}

func TestDirectory_CreateEvent(t *testing.T) {
	d := directory.New()
	v := newVenue(t, d, 100)

	e := newEvent(t, d, v.ID,
		directory.CategoryInput{Name: "Standard", Price: decimal.NewFromInt(40), Capacity: 80},
		directory.CategoryInput{Name: "VIP", Price: decimal.NewFromInt(90), Capacity: 20},
	)

	require.Len(t, e.Categories, 2)
	for _, c := range e.Categories {
		assert.Equal(t, e.ID, c.EventID)
	}

	categories, err := d.EventCategories(e.ID)
	require.NoError(t, err)
	for _, c := range categories {
		assert.Equal(t, c.Total, c.Available, "categories start fully available")
	}

	venue, err := d.GetVenue(v.ID)
	require.NoError(t, err)
	require.Len(t, venue.Schedule, 1)
	assert.Equal(t, e.ID, venue.Schedule[0].EventID)
}

func TestDirectory_CreateEventValidations(t *testing.T) {
	d := directory.New()
	v := newVenue(t, d, 50)
	newEvent(t, d, v.ID, directory.CategoryInput{Name: "Standard", Price: decimal.NewFromInt(10), Capacity: 50})

	_, err := d.CreateEvent(directory.EventInput{Name: "No Venue", Date: eventDate, VenueID: "missing"})
	assert.ErrorIs(t, err, entity.ErrVenueNotFound)

	_, err = d.CreateEvent(directory.EventInput{
		Name:       "Too Big",
		Date:       eventDate.AddDate(0, 0, 1),
		VenueID:    v.ID,
		Categories: []directory.CategoryInput{{Name: "Standard", Price: decimal.NewFromInt(10), Capacity: 51}},
	})
	assert.ErrorIs(t, err, entity.ErrVenueCapacityExceeded)

	_, err = d.CreateEvent(directory.EventInput{Name: "Same Night", Date: eventDate, VenueID: v.ID})
	assert.ErrorIs(t, err, entity.ErrVenueDateConflict)
}

func TestDirectory_UpdateEvent(t *testing.T) {
	d := directory.New()
	v := newVenue(t, d, 100)
	e := newEvent(t, d, v.ID, directory.CategoryInput{Name: "Standard", Price: decimal.NewFromInt(10), Capacity: 50})

	name := "Renamed"
	updated, err := d.UpdateEvent(e.ID, directory.EventUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	require.NoError(t, d.PublishEvent(e.ID))

	_, err = d.UpdateEvent(e.ID, directory.EventUpdate{Name: &name})
	assert.ErrorIs(t, err, entity.ErrEventPublished)
}

func TestDirectory_UpdateEventDateConflict(t *testing.T) {
	d := directory.New()
	v := newVenue(t, d, 100)
	newEvent(t, d, v.ID)

	other, err := d.CreateEvent(directory.EventInput{Name: "Second Night", Date: eventDate.AddDate(0, 0, 1), VenueID: v.ID})
	require.NoError(t, err)

	_, err = d.UpdateEvent(other.ID, directory.EventUpdate{Date: &eventDate})
	assert.ErrorIs(t, err, entity.ErrVenueDateConflict)
}

func TestDirectory_PublishEvent(t *testing.T) {
	d := directory.New()
	v := newVenue(t, d, 100)
	e := newEvent(t, d, v.ID)

	require.NoError(t, d.PublishEvent(e.ID))
	assert.ErrorIs(t, d.PublishEvent(e.ID), entity.ErrEventPublished)
	assert.ErrorIs(t, d.PublishEvent("missing"), entity.ErrEventNotFound)
}

func TestDirectory_SetCategories(t *testing.T) {
	d := directory.New()
	v := newVenue(t, d, 100)
	e := newEvent(t, d, v.ID, directory.CategoryInput{Name: "Standard", Price: decimal.NewFromInt(10), Capacity: 50})

	updated, err := d.SetCategories(e.ID, []directory.CategoryInput{
		{Name: "Balcony", Price: decimal.NewFromInt(25), Capacity: 60},
		{Name: "Floor", Price: decimal.NewFromInt(35), Capacity: 40},
	})
	require.NoError(t, err)
	require.Len(t, updated.Categories, 2)

	_, err = d.SetCategories(e.ID, []directory.CategoryInput{{Name: "Too Big", Price: decimal.NewFromInt(1), Capacity: 200}})
	assert.ErrorIs(t, err, entity.ErrVenueCapacityExceeded)

	require.NoError(t, d.PublishEvent(e.ID))
	_, err = d.SetCategories(e.ID, nil)
	assert.ErrorIs(t, err, entity.ErrEventPublished)
}

func TestDirectory_ReadsReturnCopies(t *testing.T) {
	d := directory.New()
	v := newVenue(t, d, 100)
	e := newEvent(t, d, v.ID, directory.CategoryInput{Name: "Standard", Price: decimal.NewFromInt(10), Capacity: 50})

	got, err := d.GetEvent(e.ID)
	require.NoError(t, err)
	got.Name = "Scribbled"
	got.Categories[0].Total = 0

	again, err := d.GetEvent(e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Opening Night", again.Name)
	assert.Equal(t, 50, again.Categories[0].Total)

	venue, err := d.GetVenue(v.ID)
	require.NoError(t, err)
	venue.Schedule[0].EventID = "scribbled"

	venueAgain, err := d.GetVenue(v.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, venueAgain.Schedule[0].EventID)
}

func TestDirectory_ResolveCategory(t *testing.T) {
	d := directory.New()
	v := newVenue(t, d, 100)
	e := newEvent(t, d, v.ID, directory.CategoryInput{Name: "Standard", Price: decimal.NewFromInt(10), Capacity: 50})

	c, err := d.ResolveCategory(e.ID, e.Categories[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Standard", c.Name)

	_, err = d.ResolveCategory("missing", e.Categories[0].ID)
	assert.ErrorIs(t, err, entity.ErrEventNotFound)

	_, err = d.ResolveCategory(e.ID, "missing")
	assert.ErrorIs(t, err, entity.ErrCategoryNotFound)
}

func TestDirectory_EventCategories(t *testing.T) {
	d := directory.New()
	v := newVenue(t, d, 100)
	e := newEvent(t, d, v.ID,
		directory.CategoryInput{Name: "Standard", Price: decimal.NewFromInt(10), Capacity: 50},
	)

	categories, err := d.EventCategories(e.ID)
	require.NoError(t, err)
	assert.Len(t, categories, 1)

	empty := newEvent(t, d, newVenue(t, d, 10).ID)
	categories, err = d.EventCategories(empty.ID)
	require.NoError(t, err)
	assert.Empty(t, categories)
}
