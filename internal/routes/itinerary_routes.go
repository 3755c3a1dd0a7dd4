package routes

import (
	"github.com/gin-gonic/gin"

	"tour_ops/internal/controllers"
)

// ItineraryRoutes mounts the route aggregate and everything hanging off it.
func ItineraryRoutes(api *gin.RouterGroup, d Deps) {
	rc := controllers.NewRouteController(d.Routes)
	sc := controllers.NewSegmentController(d.Segments)
	lc := controllers.NewLogisticsController(d.Logistics)
	ac := controllers.NewAccommodationController(d.Accommodations)
	tc := controllers.NewTransferController(d.Transfers)
	pc := controllers.NewParticipantController(d.Participants, d.Segments)

	routes := api.Group("/routes")
	{
		routes.POST("", rc.CreateRoute)
		routes.GET("", rc.ListRoutes)
		routes.GET("/:id", rc.GetRoute)
		routes.PUT("/:id", rc.UpdateRoute)
		routes.DELETE("/:id", rc.DeleteRoute)
		routes.GET("/:id/summary", rc.GetRouteSummary)

		routes.POST("/:id/segments", sc.CreateSegment)
		routes.GET("/:id/segments", sc.ListSegments)
		routes.POST("/:id/logistics", lc.CreateLogistics)
		routes.GET("/:id/logistics", lc.ListLogistics)
		routes.POST("/:id/transfers", tc.CreateTransfer)
		routes.GET("/:id/transfers", tc.ListTransfers)
		routes.POST("/:id/participants", pc.AddParticipant)
		routes.GET("/:id/participants", pc.ListParticipants)
	}

	segments := api.Group("/segments")
	{
		segments.GET("/:id", sc.GetSegment)
		segments.PUT("/:id", sc.UpdateSegment)
		segments.DELETE("/:id", sc.DeleteSegment)
		segments.POST("/:id/move", sc.MoveSegment)
		segments.POST("/:id/stops", sc.AddStop)
		segments.GET("/:id/stops", sc.ListStops)
		segments.PUT("/:id/stops", sc.ReorderStops)
		segments.GET("/:id/logistics", lc.ListSegmentLogistics)
		segments.POST("/:id/accommodations", ac.AddHotel)
		segments.GET("/:id/accommodations", ac.ListAccommodations)
	}

	stops := api.Group("/stops")
	{
		stops.DELETE("/:id", sc.RemoveStop)
		stops.POST("/:id/move", sc.MoveStop)
	}

	logistics := api.Group("/logistics")
	{
		logistics.GET("/:id", lc.GetLogistics)
		logistics.PUT("/:id", lc.UpdateLogistics)
		logistics.DELETE("/:id", lc.DeleteLogistics)
	}

	accommodations := api.Group("/accommodations")
	{
		accommodations.GET("/:id", ac.GetAccommodation)
		accommodations.PUT("/:id", ac.UpdateHotel)
		accommodations.DELETE("/:id", ac.RemoveHotel)
		accommodations.POST("/:id/rooms", ac.AddRoom)
	}

	rooms := api.Group("/rooms")
	{
		rooms.GET("/:id", ac.GetRoom)
		rooms.PUT("/:id", ac.UpdateRoom)
		rooms.DELETE("/:id", ac.RemoveRoom)
		rooms.DELETE("/:id/participants/:pid", ac.RemoveRoomParticipant)
		rooms.GET("/:id/occupancy", ac.RoomOccupancy)
	}

	transfers := api.Group("/transfers")
	{
		transfers.GET("/:id", tc.GetTransfer)
		transfers.PUT("/:id", tc.UpdateTransfer)
		transfers.DELETE("/:id", tc.DeleteTransfer)
	}

	participants := api.Group("/participants")
	{
		participants.PUT("/:id", pc.UpdateNotes)
		participants.DELETE("/:id", pc.RemoveParticipant)
		participants.PUT("/:id/segments", pc.UpdateSegments)
	}
}
