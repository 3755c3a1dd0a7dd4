package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tour_ops/internal/models"
)

func segmentIDs(segs []models.RouteSegment) []string {
	ids := make([]string, len(segs))
	for i := range segs {
		ids[i] = segs[i].ID
	}
	return ids
}

func stopLocations(stops []models.RouteSegmentStop) []string {
	ids := make([]string, len(stops))
	for i := range stops {
		ids[i] = stops[i].LocationID
	}
	return ids
}

func assertCompact(t *testing.T, stops []models.RouteSegmentStop) {
	t.Helper()
	for i, s := range stops {
		assert.Equal(t, i+1, s.StopOrder)
	}
}

func TestDeriveSegmentDates_ConsecutiveDaysInSortedOrder(t *testing.T) {
	start := day(2024, 6, 1)
	route := &models.Route{StartDate: &start}
	segs := []models.RouteSegment{
		{Base: models.Base{ID: "c"}, SegmentOrder: 2, DayNumber: 3},
		{Base: models.Base{ID: "a"}, SegmentOrder: 0, DayNumber: 1},
		{Base: models.Base{ID: "b"}, SegmentOrder: 1, DayNumber: 2},
	}

	dates := DeriveSegmentDates(route, segs)
	assert.Equal(t, day(2024, 6, 1), dates["a"])
	assert.Equal(t, day(2024, 6, 2), dates["b"])
	assert.Equal(t, day(2024, 6, 3), dates["c"])

	end, duration := DeriveEndDateAndDuration(route, segs)
	require.NotNil(t, end)
	assert.Equal(t, day(2024, 6, 3), *end)
	assert.Equal(t, 3, duration)
}

func TestDeriveSegmentDates_TieBrokenByDayNumber(t *testing.T) {
	start := day(2024, 6, 1)
	route := &models.Route{StartDate: &start}
	segs := []models.RouteSegment{
		{Base: models.Base{ID: "late"}, SegmentOrder: 0, DayNumber: 2},
		{Base: models.Base{ID: "early"}, SegmentOrder: 0, DayNumber: 1},
	}
	dates := DeriveSegmentDates(route, segs)
	assert.Equal(t, day(2024, 6, 1), dates["early"])
	assert.Equal(t, day(2024, 6, 2), dates["late"])
}

func TestDeriveEndDateAndDuration_NoStartOrNoSegments(t *testing.T) {
	segs := []models.RouteSegment{{}, {}}

	end, duration := DeriveEndDateAndDuration(&models.Route{}, segs)
	assert.Nil(t, end)
	assert.Equal(t, 2, duration)
	assert.Nil(t, DeriveSegmentDates(&models.Route{}, segs))

	start := day(2024, 6, 1)
	end, duration = DeriveEndDateAndDuration(&models.Route{StartDate: &start}, nil)
	assert.Nil(t, end)
	assert.Equal(t, 0, duration)
}

func TestCreateSegment_Validation(t *testing.T) {
	f := newFixture(t)
	route := f.route(t, nil)

	_, err := f.segments.CreateSegment(f.ctx, route.ID, SegmentInput{DayNumber: 0})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.segments.CreateSegment(f.ctx, route.ID, SegmentInput{DayNumber: 1, SegmentOrder: -1})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.segments.CreateSegment(f.ctx, route.ID, SegmentInput{DayNumber: 1, Distance: -5})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.segments.CreateSegment(f.ctx, "missing-route", SegmentInput{DayNumber: 1})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.segments.CreateSegment(f.ctx, route.ID, SegmentInput{DayNumber: 1, FromLocationID: ptr("nowhere")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateSegment_LongDistanceAccepted(t *testing.T) {
	f := newFixture(t)
	route := f.route(t, nil)
	seg, err := f.segments.CreateSegment(f.ctx, route.ID, SegmentInput{DayNumber: 1, Distance: MaxSegmentDistance + 25})
	require.NoError(t, err)
	assert.Equal(t, MaxSegmentDistance+25, seg.Distance)
}

func TestMoveSegment_SwapsWithNeighbour(t *testing.T) {
	f := newFixture(t)
	route := f.route(t, nil)
	a := f.segment(t, route.ID, 1, 0)
	b := f.segment(t, route.ID, 2, 1)
	c := f.segment(t, route.ID, 3, 2)

	segs, err := f.segments.MoveSegment(f.ctx, c.ID, DirectionUp)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, c.ID, b.ID}, segmentIDs(segs))
	for i, s := range segs {
		assert.Equal(t, i, s.SegmentOrder)
	}

	segs, err = f.segments.MoveSegment(f.ctx, a.ID, DirectionDown)
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID, a.ID, b.ID}, segmentIDs(segs))
}

func TestMoveSegment_AtEdgesRejected(t *testing.T) {
	f := newFixture(t)
	route := f.route(t, nil)
	a := f.segment(t, route.ID, 1, 0)
	b := f.segment(t, route.ID, 2, 1)

	_, err := f.segments.MoveSegment(f.ctx, a.ID, DirectionUp)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.segments.MoveSegment(f.ctx, b.ID, DirectionDown)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.segments.MoveSegment(f.ctx, a.ID, Direction("sideways"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMoveSegment_DuplicateOrdersStillMove(t *testing.T) {
	f := newFixture(t)
	route := f.route(t, nil)
	first := f.segment(t, route.ID, 1, 0)
	second := f.segment(t, route.ID, 2, 0)

	segs, err := f.segments.MoveSegment(f.ctx, first.ID, DirectionDown)
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID, first.ID}, segmentIDs(segs))
	assert.Equal(t, 0, segs[0].SegmentOrder)
	assert.Equal(t, 1, segs[1].SegmentOrder)
}

func TestMoveSegment_ConcurrentMovesKeepPermutation(t *testing.T) {
	f := newFixture(t)
	route := f.route(t, nil)
	var ids []string
	for i := 0; i < 6; i++ {
		ids = append(ids, f.segment(t, route.ID, i+1, i).ID)
	}

	moves := []struct {
		id  string
		dir Direction
	}{
		{ids[1], DirectionDown}, {ids[2], DirectionUp}, {ids[3], DirectionDown},
		{ids[4], DirectionUp}, {ids[0], DirectionDown}, {ids[5], DirectionUp},
		{ids[2], DirectionDown}, {ids[3], DirectionUp},
	}
	errs := make([]error, len(moves))
	var wg sync.WaitGroup
	for i, m := range moves {
		wg.Add(1)
		go func(i int, id string, dir Direction) {
			defer wg.Done()
			_, errs[i] = f.segments.MoveSegment(f.ctx, id, dir)
		}(i, m.id, m.dir)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, ErrValidation)
		}
	}
	segs, err := f.segments.ListSegments(f.ctx, route.ID)
	require.NoError(t, err)
	require.Len(t, segs, len(ids))
	assert.ElementsMatch(t, ids, segmentIDs(segs))
	for i, s := range segs {
		assert.Equal(t, i, s.SegmentOrder)
	}
}

func TestStops_OrderStaysContiguous(t *testing.T) {
	f := newFixture(t)
	route := f.route(t, nil)
	seg := f.segment(t, route.ID, 1, 0)
	l1, l2, l3 := f.location(t, "Imlil"), f.location(t, "Aroumd"), f.location(t, "Tacheddirt")

	_, err := f.segments.AddStop(f.ctx, seg.ID, l1, "", nil)
	require.NoError(t, err)
	_, err = f.segments.AddStop(f.ctx, seg.ID, l2, "", nil)
	require.NoError(t, err)
	stops, err := f.segments.AddStop(f.ctx, seg.ID, l3, "", ptr(1))
	require.NoError(t, err)
	assert.Equal(t, []string{l3, l1, l2}, stopLocations(stops))
	assertCompact(t, stops)

	stops, err = f.segments.RemoveStop(f.ctx, stops[1].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{l3, l2}, stopLocations(stops))
	assertCompact(t, stops)

	stops, err = f.segments.MoveStop(f.ctx, stops[1].ID, DirectionUp)
	require.NoError(t, err)
	assert.Equal(t, []string{l2, l3}, stopLocations(stops))
	assertCompact(t, stops)

	_, err = f.segments.MoveStop(f.ctx, stops[0].ID, DirectionUp)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestReorderStops_RequiresPermutation(t *testing.T) {
	f := newFixture(t)
	route := f.route(t, nil)
	seg := f.segment(t, route.ID, 1, 0)
	l1, l2 := f.location(t, "Imlil"), f.location(t, "Aroumd")
	_, err := f.segments.AddStop(f.ctx, seg.ID, l1, "", nil)
	require.NoError(t, err)
	stops, err := f.segments.AddStop(f.ctx, seg.ID, l2, "", nil)
	require.NoError(t, err)

	_, err = f.segments.ReorderStops(f.ctx, seg.ID, []string{stops[0].ID})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.segments.ReorderStops(f.ctx, seg.ID, []string{stops[0].ID, stops[0].ID})
	assert.ErrorIs(t, err, ErrValidation)

	reordered, err := f.segments.ReorderStops(f.ctx, seg.ID, []string{stops[1].ID, stops[0].ID})
	require.NoError(t, err)
	assert.Equal(t, []string{l2, l1}, stopLocations(reordered))
	assertCompact(t, reordered)
}

func TestDeleteSegment_CascadesChildren(t *testing.T) {
	f := newFixture(t)
	route := f.route(t, nil)
	keep := f.segment(t, route.ID, 1, 0)
	seg := f.segment(t, route.ID, 2, 1)

	_, err := f.segments.AddStop(f.ctx, seg.ID, f.location(t, "Imlil"), "", nil)
	require.NoError(t, err)
	_, err = f.logistics.CreateLogistics(f.ctx, route.ID, LogisticsInput{
		SegmentID:     &seg.ID,
		LogisticsType: models.LogisticsHotelClient,
		EntityID:      ptr(f.hotel(t, "Kasbah")),
		Cost:          mustDecimal("80"),
	})
	require.NoError(t, err)
	part := f.clientParticipant(t, route.ID, "Ana", keep.ID, seg.ID)
	acc, err := f.accommodations.AddHotel(f.ctx, seg.ID, f.hotel(t, "Riad"), models.GroupClient, "")
	require.NoError(t, err)
	_, err = f.accommodations.AddRoom(f.ctx, acc.ID, RoomInput{RoomType: models.RoomSingle, ParticipantIDs: []string{part.ID}})
	require.NoError(t, err)

	require.NoError(t, f.segments.DeleteSegment(f.ctx, seg.ID))

	_, err = f.segments.GetSegment(f.ctx, seg.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.accommodations.GetAccommodation(f.ctx, acc.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	items, err := f.logistics.ListByRoute(f.ctx, route.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	var stops, occupants int64
	require.NoError(t, f.db.Model(&models.RouteSegmentStop{}).Count(&stops).Error)
	require.NoError(t, f.db.Model(&models.RoomOccupant{}).Count(&occupants).Error)
	assert.Zero(t, stops)
	assert.Zero(t, occupants)

	got, err := f.participants.GetParticipant(f.ctx, part.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{keep.ID}, got.SegmentIDs)
}
