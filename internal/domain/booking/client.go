package booking

import (
	"strings"

	"github.com/BruksfildServices01/barber-calendar/internal/models"
)

type ClientInput struct {
	Name  string
	Phone string
	Notes string
	// NotesIfNew is used as Notes when the client does not exist yet and Notes is empty.
	NotesIfNew string
}

// ClientIndex looks clients up by case-insensitive name. It is built once per
// operation and updated in place, so later lookups see clients added earlier.
type ClientIndex struct {
	byName map[string]*models.Client
}

// NewClientIndex indexes clients; when two share a name the first one wins.
func NewClientIndex(clients []models.Client) *ClientIndex {
	ix := &ClientIndex{byName: make(map[string]*models.Client, len(clients))}
	for i := range clients {
		key := models.NameKey(clients[i].Name)
		if _, seen := ix.byName[key]; seen {
			continue
		}
		c := clients[i]
		ix.byName[key] = &c
	}
	return ix
}

func (ix *ClientIndex) Lookup(name string) *models.Client {
	return ix.byName[models.NameKey(name)]
}

func (ix *ClientIndex) Put(c *models.Client) {
	ix.byName[models.NameKey(c.Name)] = c
}

// Forget drops name from the index.
func (ix *ClientIndex) Forget(name string) {
	delete(ix.byName, models.NameKey(name))
}

func (ix *ClientIndex) Len() int {
	return len(ix.byName)
}

// UpsertClientForBooking applies one new booking on bookingDate to the client
// named in.Name. The returned client is the indexed value itself; created
// reports whether it had to be made.
//
// Existing clients: non-empty phone/notes overwrite, the visit count goes up
// by one and LastVisit only ever moves forward.
func UpsertClientForBooking(ix *ClientIndex, in ClientInput, bookingDate string) (*models.Client, bool) {
	name := strings.TrimSpace(in.Name)
	phone := strings.TrimSpace(in.Phone)
	notes := strings.TrimSpace(in.Notes)

	if c := ix.Lookup(name); c != nil {
		if phone != "" {
			c.Phone = phone
		}
		if notes != "" {
			c.Notes = notes
		}
		c.TotalAppointments++
		if bookingDate > c.LastVisit {
			c.LastVisit = bookingDate
		}
		return c, false
	}

	if notes == "" {
		notes = in.NotesIfNew
	}

	c := &models.Client{
		Name:              name,
		NameKey:           models.NameKey(name),
		Phone:             phone,
		Notes:             notes,
		TotalAppointments: 1,
		LastVisit:         bookingDate,
	}
	ix.Put(c)
	return c, true
}
