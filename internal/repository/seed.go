package repository

import (
	"context"
	"errors"
	"fmt"

	"streaksage/internal/domain"
)

type seedTask struct {
	title, description, emoji string
	streak                    int
}

var defaultTasks = []seedTask{
	{"Morning Meditation", "10 minutes of mindfulness", "🧘", 7},
	{"Read 20 Pages", "Personal development book", "📚", 12},
	{"Exercise", "30 minutes workout", "💪", 3},
	{"Hydration", "8 glasses of water", "💧", 21},
	{"Gratitude Journal", "3 things I'm grateful for", "📝", 15},
	{"Learn Something New", "15 minutes skill building", "🌱", 5},
}

func strPtr(s string) *string { return &s }

var defaultQuotes = []domain.Quote{
	{Text: "You have the right to work, but never to the fruit of work. You should never engage in action for the sake of reward, nor should you long for inaction.", Source: "Bhagavad Gita", Chapter: strPtr("Chapter 2"), Verse: strPtr("Verse 47"), IsActive: true},
	{Text: "The mind is restless and difficult to restrain, but it is subdued by practice.", Source: "Bhagavad Gita", Chapter: strPtr("Chapter 6"), Verse: strPtr("Verse 35"), IsActive: true},
	{Text: "A person can rise through the efforts of his own mind; or draw himself down, in the same manner. Because each person is his own friend or enemy.", Source: "Bhagavad Gita", Chapter: strPtr("Chapter 6"), Verse: strPtr("Verse 5"), IsActive: true},
	{Text: "Whatever action is performed by a great man, common men follow in his footsteps, and whatever standards he sets by exemplary acts, all the world pursues.", Source: "Bhagavad Gita", Chapter: strPtr("Chapter 3"), Verse: strPtr("Verse 21"), IsActive: true},
	{Text: "You came empty handed, you will leave empty handed. What is yours today, belonged to someone else yesterday, and will belong to someone else the day after tomorrow.", Source: "Bhagavad Gita", Chapter: strPtr("Chapter 2"), Verse: strPtr("Verse 20"), IsActive: true},
}

// Seed installs the demo user, its tasks and the quote list.
// It does nothing when the default user already exists.
func Seed(ctx context.Context, s Store) error {
	if _, err := s.GetUser(ctx, domain.DefaultUserID); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("seed: lookup default user: %w", err)
	}

	u := &domain.User{Username: "user"}
	if err := s.CreateUser(ctx, u); err != nil {
		return fmt.Errorf("seed: create user: %w", err)
	}
	if u.ID != domain.DefaultUserID {
		return fmt.Errorf("seed: default user got id %d, want %d", u.ID, domain.DefaultUserID)
	}
	u.CurrentStreak, u.BestStreak, u.TotalTasks, u.PerfectDays = 47, 47, 1247, 34
	if err := s.UpdateUserStats(ctx, u); err != nil {
		return fmt.Errorf("seed: user stats: %w", err)
	}

	for _, st := range defaultTasks {
		t := &domain.Task{
			UserID:      u.ID,
			Title:       st.title,
			Description: st.description,
			Emoji:       st.emoji,
		}
		if err := s.CreateTask(ctx, t); err != nil {
			return fmt.Errorf("seed: create task %q: %w", st.title, err)
		}
		for i := 0; i < st.streak; i++ {
			if _, err := s.IncrementTaskStreak(ctx, t.ID); err != nil {
				return fmt.Errorf("seed: task streak %q: %w", st.title, err)
			}
		}
	}

	for i := range defaultQuotes {
		q := defaultQuotes[i]
		if err := s.CreateQuote(ctx, &q); err != nil {
			return fmt.Errorf("seed: create quote: %w", err)
		}
	}
	return nil
}
