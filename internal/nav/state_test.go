package nav

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/seerrpad/internal/domain"
)

func sampleItems(n int) []domain.MediaSummary {
	items := make([]domain.MediaSummary, n)
	for i := range items {
		items[i] = domain.MediaSummary{ID: 100 + i, Type: domain.MediaTypeMovie, Title: "Title"}
	}
	return items
}

func TestMoveSelection_WrapsRoundTrip(t *testing.T) {
	for _, n := range []int{1, 2, 4, 7} {
		s := NewState(0)
		s.browseResults = sampleItems(n)
		s.PushScreen(ScreenBrowse)

		for i := 0; i < n; i++ {
			s.MoveSelection(+1)
		}
		assert.Equal(t, 0, s.Selected(), "n=%d", n)
	}
}

func TestMoveSelection_WrapsBackward(t *testing.T) {
	s := NewState(0)
	s.browseResults = sampleItems(5)
	s.PushScreen(ScreenBrowse)

	s.MoveSelection(-1)
	assert.Equal(t, 4, s.Selected())
	s.MoveSelection(+1)
	assert.Equal(t, 0, s.Selected())
}

func TestMoveSelection_ClampsDirection(t *testing.T) {
	s := NewState(0)
	s.MoveSelection(5)
	assert.Equal(t, 1, s.Selected())
	s.MoveSelection(-9)
	assert.Equal(t, 0, s.Selected())
}

func TestMoveSelection_EmptyList(t *testing.T) {
	s := NewState(0)
	s.PushScreen(ScreenBrowse)

	s.MoveSelection(+1)
	assert.Equal(t, 0, s.Selected())
	s.MoveSelection(-1)
	assert.Equal(t, 0, s.Selected())
	assert.Equal(t, Intent{Kind: IntentNone}, s.SelectCurrentItem())
}

func TestMoveSelection_IgnoredOnDetail(t *testing.T) {
	s := NewState(0)
	s.OpenDetail(sampleItems(1)[0])
	s.MoveSelection(+1)
	assert.Equal(t, 0, s.Selected())
}

func TestMoveKeyboardCursor_Clamps(t *testing.T) {
	s := NewState(0)
	s.MoveKeyboardCursor(1, 1)
	assert.Equal(t, KeyboardState{}, s.Keyboard(), "ignored outside the keyboard screen")

	s.BeginSearch(domain.MediaTypeMovie)
	s.MoveKeyboardCursor(-1, -1)
	assert.Equal(t, 0, s.Keyboard().Row)
	assert.Equal(t, 0, s.Keyboard().Col)

	for i := 0; i < 20; i++ {
		s.MoveKeyboardCursor(1, 1)
	}
	assert.Equal(t, KeyboardRows-1, s.Keyboard().Row)
	assert.Equal(t, KeyboardCols-1, s.Keyboard().Col)
	assert.Equal(t, Key{Kind: KeyCancel}, s.Keyboard().Current())
}

func TestPushThenBack_ReturnsToStart(t *testing.T) {
	sequences := [][]Screen{
		{ScreenKeyboard},
		{ScreenBrowse, ScreenMediaDetail},
		{ScreenKeyboard, ScreenSearchResults, ScreenMediaDetail},
		{ScreenBrowse, ScreenBrowse, ScreenMediaDetail},
	}

	for _, seq := range sequences {
		s := NewState(0)
		for _, sc := range seq {
			s.PushScreen(sc)
			assert.NotContains(t, s.Stack(), s.Current())
		}
		for range seq {
			s.GoBack()
		}
		assert.Equal(t, ScreenMainMenu, s.Current(), "seq=%v", seq)
		assert.Empty(t, s.Stack(), "seq=%v", seq)
	}
}

func TestPushScreen_StackNeverHoldsCurrent(t *testing.T) {
	s := NewState(0)
	s.PushScreen(ScreenBrowse)
	s.PushScreen(ScreenMediaDetail)
	s.PushScreen(ScreenBrowse)

	assert.Equal(t, ScreenBrowse, s.Current())
	assert.Equal(t, []Screen{ScreenMainMenu}, s.Stack())
}

func TestGoBack(t *testing.T) {
	t.Run("root is a no-op", func(t *testing.T) {
		s := NewState(0)
		assert.False(t, s.GoBack())
		assert.Equal(t, ScreenMainMenu, s.Current())
	})

	t.Run("empty stack off root returns to main menu", func(t *testing.T) {
		s := NewState(0)
		s.ReplaceScreen(ScreenSearchResults)
		require.Empty(t, s.Stack())
		assert.True(t, s.GoBack())
		assert.Equal(t, ScreenMainMenu, s.Current())
	})

	t.Run("search results go back to the menu", func(t *testing.T) {
		s := NewState(0)
		s.BeginSearch(domain.MediaTypeTV)
		s.ShowSearchResults(sampleItems(2))
		s.MoveSelection(1)
		s.OpenDetail(sampleItems(2)[1])

		s.GoBack()
		assert.Equal(t, ScreenSearchResults, s.Current())
		s.GoBack()
		assert.Equal(t, ScreenMainMenu, s.Current())
	})
}

func TestSelectCurrentItem_MainMenu(t *testing.T) {
	s := NewState(0)

	want := []Intent{
		{Kind: IntentStartSearch, MediaType: domain.MediaTypeMovie},
		{Kind: IntentStartSearch, MediaType: domain.MediaTypeTV},
		{Kind: IntentStartBrowse},
		{Kind: IntentQuit},
	}
	for i, w := range want {
		assert.Equal(t, w, s.SelectCurrentItem(), "menu item %d", i)
		s.MoveSelection(+1)
	}
}

func TestSelectCurrentItem_ResultsAndDetail(t *testing.T) {
	s := NewState(0)
	items := sampleItems(3)
	s.BeginSearch(domain.MediaTypeMovie)
	s.ShowSearchResults(items)
	s.MoveSelection(+1)

	intent := s.SelectCurrentItem()
	require.Equal(t, IntentOpenDetail, intent.Kind)
	assert.Equal(t, items[1], intent.Item)

	s.OpenDetail(intent.Item)
	intent = s.SelectCurrentItem()
	assert.Equal(t, IntentSubmitRequest, intent.Kind)
	assert.Equal(t, items[1], intent.Item)
}

func TestSelectCurrentItem_KeyboardKey(t *testing.T) {
	s := NewState(0)
	s.BeginSearch(domain.MediaTypeMovie)
	s.MoveKeyboardCursor(1, 2)

	intent := s.SelectCurrentItem()
	assert.Equal(t, IntentKeyboardKey, intent.Kind)
	assert.Equal(t, Key{Kind: KeyChar, Char: 'm'}, intent.Key)
}

func TestQueryEditing(t *testing.T) {
	s := NewState(0)
	s.BeginSearch(domain.MediaTypeMovie)
	for _, r := range "héllo" {
		s.TypeChar(r)
	}
	assert.Equal(t, "héllo", s.Query())

	s.DeleteChar()
	s.DeleteChar()
	assert.Equal(t, "hél", s.Query())

	s.BeginSearch(domain.MediaTypeTV)
	assert.Equal(t, "", s.Query())
	assert.Equal(t, domain.MediaTypeTV, s.SearchType())
	s.DeleteChar()
	assert.Equal(t, "", s.Query())
}

func TestSetBrowseResults_ClampsSelection(t *testing.T) {
	s := NewState(0)
	s.PushScreen(ScreenBrowse)
	s.SetBrowseResults(sampleItems(5))
	s.MoveSelection(-1)
	require.Equal(t, 4, s.Selected())

	s.SetBrowseResults(sampleItems(2))
	assert.Equal(t, 1, s.Selected())
}

func TestDeferredBack(t *testing.T) {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := NewState(0)
	s.PushScreen(ScreenBrowse)
	s.OpenDetail(sampleItems(1)[0])

	s.ScheduleBack(base.Add(1500 * time.Millisecond))

	assert.False(t, s.FireDeferred(base.Add(time.Second)))
	assert.Equal(t, ScreenMediaDetail, s.Current())

	s.MoveSelection(+1)
	_, pending := s.DeferredPending()
	assert.True(t, pending, "navigation must not clear the deferred transition")

	assert.True(t, s.FireDeferred(base.Add(1600*time.Millisecond)))
	assert.Equal(t, ScreenBrowse, s.Current())

	assert.False(t, s.FireDeferred(base.Add(5*time.Second)), "fires exactly once")
	assert.Equal(t, ScreenBrowse, s.Current())
}

func TestDeferredBack_LaterScheduleReplaces(t *testing.T) {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := NewState(0)
	s.PushScreen(ScreenBrowse)

	s.ScheduleBack(base.Add(time.Second))
	s.ScheduleBack(base.Add(3 * time.Second))

	assert.False(t, s.FireDeferred(base.Add(2*time.Second)))
	assert.True(t, s.FireDeferred(base.Add(3*time.Second)))
}

func TestDebouncer(t *testing.T) {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	d := NewDebouncer(DefaultNavDelay)

	assert.True(t, d.Allow(base))
	assert.False(t, d.Allow(base.Add(100*time.Millisecond)))
	assert.True(t, d.Allow(base.Add(150*time.Millisecond)))
	assert.Equal(t, base.Add(150*time.Millisecond), d.Last())

	none := NewDebouncer(-time.Second)
	assert.True(t, none.Allow(base))
	assert.True(t, none.Allow(base))
}

func TestKeyLabels(t *testing.T) {
	assert.Equal(t, "a", Layout[0][0].Label())
	assert.Equal(t, "SPACE", Layout[3][6].Label())
	assert.Equal(t, "DEL", Layout[3][7].Label())
	assert.Equal(t, "SEARCH", Layout[3][8].Label())
	assert.Equal(t, "CANCEL", Layout[3][9].Label())
}
