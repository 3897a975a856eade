package catalog

import (
	"errors"
	"slices"

	"github.com/matchguru/match-rooms-backend/internal/engine"
)

var ErrRoomNotFound = errors.New("room not found")

// Room is one match context: two competing teams, a cosmetic online count,
// the stored 1X2 tally, and a static kickoff countdown label.
type Room struct {
	ID          int          `json:"id"`
	Team1       string       `json:"team1"`
	Team2       string       `json:"team2"`
	Emblem1     string       `json:"team1_emblem"`
	Emblem2     string       `json:"team2_emblem"`
	OnlineCount int          `json:"online_count"`
	Tally       engine.Tally `json:"tally"`
	KickoffIn   string       `json:"kickoff_in"`
}

// The catalog is fixed seed data: regenerated identically on every start,
// never written to. There is no create/update path by design.
var rooms = []Room{
	{
		ID: 1, Team1: "Manchester City", Team2: "Arsenal",
		Emblem1:     "https://upload.wikimedia.org/wikipedia/en/e/eb/Manchester_City_FC_badge.svg",
		Emblem2:     "https://upload.wikimedia.org/wikipedia/en/5/53/Arsenal_FC.svg",
		OnlineCount: 247, Tally: engine.Tally{P1: 124, X: 45, P2: 78}, KickoffIn: "02:45:30",
	},
	{
		ID: 2, Team1: "Real Madrid", Team2: "Barcelona",
		Emblem1:     "https://upload.wikimedia.org/wikipedia/en/5/56/Real_Madrid_CF.svg",
		Emblem2:     "https://upload.wikimedia.org/wikipedia/en/4/47/FC_Barcelona_%28crest%29.svg",
		OnlineCount: 532, Tally: engine.Tally{P1: 234, X: 98, P2: 200}, KickoffIn: "02:45:30",
	},
	{
		ID: 3, Team1: "Bayern", Team2: "Borussia",
		Emblem1:     "https://upload.wikimedia.org/wikipedia/commons/1/1b/FC_Bayern_M%C3%BCnchen_logo_%282017%29.svg",
		Emblem2:     "https://upload.wikimedia.org/wikipedia/commons/6/67/Borussia_Dortmund_logo.svg",
		OnlineCount: 189, Tally: engine.Tally{P1: 95, X: 32, P2: 62}, KickoffIn: "02:45:30",
	},
	{
		ID: 4, Team1: "PSG", Team2: "Marseille",
		Emblem1:     "https://upload.wikimedia.org/wikipedia/en/a/a7/Paris_Saint-Germain_F.C..svg",
		Emblem2:     "https://upload.wikimedia.org/wikipedia/commons/d/d8/Olympique_Marseille_logo.svg",
		OnlineCount: 312, Tally: engine.Tally{P1: 156, X: 67, P2: 89}, KickoffIn: "02:45:30",
	},
	{
		ID: 5, Team1: "Liverpool", Team2: "Chelsea",
		Emblem1:     "https://upload.wikimedia.org/wikipedia/en/0/0c/Liverpool_FC.svg",
		Emblem2:     "https://upload.wikimedia.org/wikipedia/en/c/cc/Chelsea_FC.svg",
		OnlineCount: 428, Tally: engine.Tally{P1: 198, X: 89, P2: 141}, KickoffIn: "02:45:30",
	},
	{
		ID: 6, Team1: "Milan", Team2: "Inter",
		Emblem1:     "https://upload.wikimedia.org/wikipedia/commons/d/d0/Logo_of_AC_Milan.svg",
		Emblem2:     "https://upload.wikimedia.org/wikipedia/commons/0/05/FC_Internazionale_Milano_2021.svg",
		OnlineCount: 276, Tally: engine.Tally{P1: 132, X: 54, P2: 90}, KickoffIn: "02:45:30",
	},
}

// Every room starts with the same fixed transcript.
var seedTranscript = []engine.Message{
	{ID: 1, Author: "Alex", Text: "The home side is taking this one today!", SentAt: "14:23"},
	{ID: 2, Author: "Dmitry", Text: "Not a given, the visitors are in great form", SentAt: "14:24"},
	{ID: 3, Author: "Mikhail", Text: "Putting my money on a 2-2 draw", SentAt: "14:25"},
	{ID: 4, Author: "Sergey", Text: "Watch the striker open the scoring", SentAt: "14:26"},
	{ID: 5, Author: "Vladimir", Text: "That back line looks shaky to me", SentAt: "14:27"},
}

// List returns the catalog in its fixed display order.
func List() []Room {
	return slices.Clone(rooms)
}

// Get resolves a single room by id.
func Get(id int) (Room, error) {
	for _, r := range rooms {
		if r.ID == id {
			return r, nil
		}
	}
	return Room{}, ErrRoomNotFound
}

// SeedTranscript returns the fixed starting transcript for a room.
func SeedTranscript(roomID int) []engine.Message {
	return slices.Clone(seedTranscript)
}

// SeedState builds the initial live state for one room.
func SeedState(r Room) engine.State {
	return engine.NewState(r.ID, r.Tally, SeedTranscript(r.ID))
}
