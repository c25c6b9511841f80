package store

import (
	"sort"
	"strings"
	"time"

	"digital-garden/internal/domain"
)

// Stats are the headline numbers shown on the dashboard.
type Stats struct {
	BooksReadThisYear int `json:"booksReadThisYear"`
	TotalPagesRead    int `json:"totalPagesRead"`
	BooksReading      int `json:"booksReading"`
	BooksTBR          int `json:"booksTbr"`
}

// Stats derives the dashboard numbers from the current snapshot.
func (l *Library) Stats() Stats {
	return l.StatsAt(time.Now())
}

// StatsAt computes the stats relative to a reference time; tests pin it.
func (l *Library) StatsAt(now time.Time) Stats {
	snap := l.Snapshot()
	currentYear := now.Year()

	var stats Stats
	for _, b := range snap.Books {
		stats.TotalPagesRead += b.Progress
		switch b.Status {
		case domain.StatusReading:
			stats.BooksReading++
		case domain.StatusTBR:
			stats.BooksTBR++
		case domain.StatusFinished:
			if b.DateFinished != nil && b.DateFinished.Year() == currentYear {
				stats.BooksReadThisYear++
			}
		}
	}
	return stats
}

// Average reading pace assumptions used by the rewind digest.
const (
	readingSpeedMinPerPage = 2
	wordsPerBookPage       = 275
)

// Reading rhythm labels.
const (
	RhythmEarlyBird  = "Early Bird"
	RhythmDaydreamer = "Daydreamer"
	RhythmNightOwl   = "Night Owl"
	RhythmBalanced   = "Balanced Reader"
)

// StyleTag is one entry of the rewind's genre breakdown.
type StyleTag struct {
	Tag    string   `json:"tag"`
	Count  int      `json:"count"`
	Titles []string `json:"titles"`
}

// Rewind is the monthly reading digest: what was finished and started, how
// much was read, and how the month compares to the previous one.
type Rewind struct {
	FinishedCount  int `json:"finishedCount"`
	StartedCount   int `json:"startedCount"`
	NotesCount     int `json:"notesCount"`
	PagesConquered int `json:"pagesConquered"`

	PagesPreviousMonth int `json:"pagesPreviousMonth"`
	TrendPercent       int `json:"trendPercent"`

	HoursInvested   int `json:"hoursInvested"`
	MinutesInvested int `json:"minutesInvested"`
	WordsConsumed   int `json:"wordsConsumed"`
	DailyVelocity   int `json:"dailyVelocity"`

	Rhythm      string       `json:"rhythm"`
	DeepestDive *domain.Book `json:"deepestDive,omitempty"`
	TopStyles   []StyleTag   `json:"topStyles"`
}

// RewindAt computes the monthly digest relative to a reference time.
func (l *Library) RewindAt(now time.Time) Rewind {
	snap := l.Snapshot()
	oneMonthAgo := now.AddDate(0, -1, 0)
	twoMonthsAgo := now.AddDate(0, -2, 0)

	var rewind Rewind
	var finishedThisMonth []domain.Book

	for _, b := range snap.Books {
		if b.Status == domain.StatusFinished && b.DateFinished != nil {
			if b.DateFinished.After(oneMonthAgo) {
				finishedThisMonth = append(finishedThisMonth, b)
				rewind.PagesConquered += b.PageCount
			} else if b.DateFinished.After(twoMonthsAgo) {
				rewind.PagesPreviousMonth += b.PageCount
			}
		}
		if b.DateStarted != nil && b.DateStarted.After(oneMonthAgo) {
			rewind.StartedCount++
		}
	}
	rewind.FinishedCount = len(finishedThisMonth)

	trendDiff := rewind.PagesConquered - rewind.PagesPreviousMonth
	if rewind.PagesPreviousMonth > 0 {
		rewind.TrendPercent = trendDiff * 100 / rewind.PagesPreviousMonth
	} else {
		rewind.TrendPercent = 100
	}

	totalMinutes := rewind.PagesConquered * readingSpeedMinPerPage
	rewind.HoursInvested = totalMinutes / 60
	rewind.MinutesInvested = totalMinutes % 60
	rewind.WordsConsumed = rewind.PagesConquered * wordsPerBookPage
	rewind.DailyVelocity = rewind.PagesConquered / 30

	// Daily rhythm from note timestamps.
	var morning, afternoon, evening int
	for _, n := range snap.Notes {
		if !n.CreatedAt.After(oneMonthAgo) {
			continue
		}
		rewind.NotesCount++
		switch h := n.CreatedAt.Hour(); {
		case h >= 5 && h < 12:
			morning++
		case h >= 12 && h < 18:
			afternoon++
		default:
			evening++
		}
	}
	switch {
	case morning > afternoon && morning > evening:
		rewind.Rhythm = RhythmEarlyBird
	case afternoon > morning && afternoon > evening:
		rewind.Rhythm = RhythmDaydreamer
	case evening > morning && evening > afternoon:
		rewind.Rhythm = RhythmNightOwl
	default:
		rewind.Rhythm = RhythmBalanced
	}

	// Deepest dive: longest book finished this month.
	for i := range finishedThisMonth {
		b := finishedThisMonth[i]
		if rewind.DeepestDive == nil || b.PageCount > rewind.DeepestDive.PageCount {
			rewind.DeepestDive = &b
		}
	}

	rewind.TopStyles = topStyles(snap.Books, finishedThisMonth)
	return rewind
}

// topStyles aggregates tags across the month's finished books plus everything
// currently being read, most frequent first, capped at ten.
func topStyles(all []domain.Book, finishedThisMonth []domain.Book) []StyleTag {
	source := append([]domain.Book{}, finishedThisMonth...)
	for _, b := range all {
		if b.Status == domain.StatusReading {
			source = append(source, b)
		}
	}

	type tagEntry struct {
		count  int
		titles []string
		seen   map[string]bool
	}
	entries := map[string]*tagEntry{}
	for _, b := range source {
		for _, t := range b.Tags {
			tag := strings.ToLower(t)
			e, ok := entries[tag]
			if !ok {
				e = &tagEntry{seen: map[string]bool{}}
				entries[tag] = e
			}
			e.count++
			if !e.seen[b.Title] {
				e.seen[b.Title] = true
				e.titles = append(e.titles, b.Title)
			}
		}
	}

	styles := make([]StyleTag, 0, len(entries))
	for tag, e := range entries {
		styles = append(styles, StyleTag{Tag: tag, Count: e.count, Titles: e.titles})
	}
	sort.Slice(styles, func(i, j int) bool {
		if styles[i].Count != styles[j].Count {
			return styles[i].Count > styles[j].Count
		}
		return styles[i].Tag < styles[j].Tag
	})
	if len(styles) > 10 {
		styles = styles[:10]
	}
	return styles
}
