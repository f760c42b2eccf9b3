package api

import (
	"github.com/gin-contrib/cors"
	"github.com/wb-go/wbf/ginext"

	"eventease/cmd/middleware"
	"eventease/internal/service"
)

type Routers struct {
	Service service.Service
}

func NewRouters(r *Routers) *ginext.Engine {
	app := ginext.New("release")

	app.Use(middleware.LoggingMiddleware())
	app.Use(cors.Default())
	apiGroup := app.Group("/v1")

	apiGroup.GET("/venues", r.Service.GetAllVenues)
	apiGroup.GET("/venues/:id", r.Service.GetVenue)
	apiGroup.POST("/venues", r.Service.CreateVenue)
	apiGroup.PUT("/venues/:id", r.Service.UpdateVenue)
	apiGroup.DELETE("/venues/:id", r.Service.DeleteVenue)

	apiGroup.GET("/events", r.Service.GetAllEvents)
	apiGroup.GET("/events/:id", r.Service.GetEvent)
	apiGroup.POST("/events", r.Service.CreateEvent)
	apiGroup.PUT("/events/:id", r.Service.UpdateEvent)
	apiGroup.DELETE("/events/:id", r.Service.DeleteEvent)

	apiGroup.GET("/bookings", r.Service.GetAllBookings)
	apiGroup.GET("/bookings/:id", r.Service.GetBooking)
	apiGroup.POST("/bookings", r.Service.CreateBooking)
	apiGroup.PUT("/bookings/:id", r.Service.UpdateBooking)
	apiGroup.DELETE("/bookings/:id", r.Service.DeleteBooking)

	return app
}
