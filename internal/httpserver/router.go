package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/water_backoffice/internal/logging"
	"github.com/Skotchmaster/water_backoffice/internal/models"
	"github.com/Skotchmaster/water_backoffice/pkg/db"
	authmw "github.com/Skotchmaster/water_backoffice/pkg/middleware/auth"
	"github.com/Skotchmaster/water_backoffice/pkg/middleware/metrics"
)

type Deps struct {
	DB      *gorm.DB
	Auth    *authmw.Auth
	Metrics *metrics.Registry

	Account       *AccountHTTP
	Reports       *ReportHTTP
	Communiques   *CommuniqueHTTP
	Reference     *ReferenceHTTP
	Registrations *RegistrationHTTP
	Subscribers   *SubscriberHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if err := db.Ping(c.Request().Context(), d.DB); err != nil {
			logging.FromContext(c.Request().Context()).Warn("readiness check failed", "error", err)
			return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Metrics != nil {
		e.GET("/metrics", d.Metrics.Handler())
	}

	authed := d.Auth.RequireAuth
	admin := []echo.MiddlewareFunc{d.Auth.RequireAuth, authmw.RequireRole(models.RoleAdmin)}

	api := e.Group("/api")

	acc := api.Group("/account")
	acc.POST("/login", d.Account.Login)
	acc.POST("/refresh-token", d.Account.RefreshToken)
	acc.POST("/generate-password-reset-token", d.Account.GeneratePasswordResetToken)
	acc.POST("/reset-password", d.Account.ResetPassword)
	acc.POST("/logout", d.Account.LogOut, authed)
	acc.GET("/get-roles", d.Account.GetRoles, authed)
	acc.GET("/get-role/:id", d.Account.GetRole, authed)
	acc.POST("/register", d.Account.Register, admin...)
	acc.POST("/create-role", d.Account.CreateRole, admin...)
	acc.POST("/assign-role/:userId", d.Account.AssignRole, admin...)
	acc.DELETE("/remove-role/:userId/:roleName", d.Account.RemoveRole, admin...)

	rep := api.Group("/report")
	rep.POST("", d.Reports.Create)
	rep.GET("", d.Reports.List, authed)
	rep.GET("/search", d.Reports.Search, authed)
	rep.GET("/byid/:id", d.Reports.Get, authed)
	rep.GET("/image/:publicId", d.Reports.Image, authed)
	rep.PUT("/:id", d.Reports.Update, authed)
	rep.DELETE("/:id", d.Reports.Delete, authed)
	rep.PUT("/:id/state/:stateId", d.Reports.ChangeState, admin...)

	st := api.Group("/state", authed)
	st.GET("", d.Reports.ListStates)
	st.GET("/:id", d.Reports.GetState)

	com := api.Group("/communicate")
	com.GET("", d.Communiques.List)
	com.GET("/:id", d.Communiques.Get, authed)
	com.POST("", d.Communiques.Create, admin...)
	com.PUT("/:id", d.Communiques.Update, authed)
	com.DELETE("/:id", d.Communiques.Delete, authed)

	ref := d.Reference
	blk := api.Group("/block")
	blk.GET("", ref.ListBlocks)
	blk.GET("/:id", ref.GetBlock)
	blk.POST("", ref.CreateBlock, authed)
	blk.PUT("/:id", ref.UpdateBlock, authed)
	blk.DELETE("/:id", ref.DeleteBlock, authed)

	nb := api.Group("/neighborhood-colony")
	nb.GET("", ref.ListNeighborhoods)
	nb.GET("/by-block/:blockId", ref.NeighborhoodsByBlock)
	nb.GET("/:id", ref.GetNeighborhood)
	nb.POST("", ref.CreateNeighborhood, authed)
	nb.PUT("/:id", ref.UpdateNeighborhood, authed)
	nb.DELETE("/:id", ref.DeleteNeighborhood, authed)

	ln := api.Group("/lines")
	ln.GET("", ref.ListLines)
	ln.GET("/by-neighborhood/:id", ref.LinesByNeighborhood)
	ln.GET("/:id", ref.GetLine)
	ln.POST("", ref.CreateLine, authed)
	ln.PUT("/:id", ref.UpdateLine, authed)
	ln.DELETE("/:id", ref.DeleteLine, authed)

	dp := api.Group("/districts-points")
	dp.GET("", ref.ListDistrictPoints)
	dp.GET("/byNeighborhoodsColonies/:id", ref.DistrictPointsByNeighborhood)
	dp.GET("/:id", ref.GetDistrictPoint)
	dp.POST("", ref.CreateDistrictPoint, authed)
	dp.PUT("/:id", ref.UpdateDistrictPoint, authed)
	dp.DELETE("/:id", ref.DeleteDistrictPoint, authed)

	reg := api.Group("/registration")
	reg.GET("", d.Registrations.List)
	reg.GET("/:id", d.Registrations.Get)
	reg.POST("", d.Registrations.Create, admin...)
	reg.PUT("/:id", d.Registrations.Update, admin...)
	reg.DELETE("/:id", d.Registrations.Delete, admin...)

	sub := api.Group("/subscribers")
	sub.GET("/buscar-abonado/:clave", d.Subscribers.Lookup)
	sub.GET("/buscar-abonado-completo/:clave", d.Subscribers.LookupFull, authed)
	sub.GET("/comentario/:clave", d.Subscribers.Comments, authed)
	sub.GET("/historial/:clave", d.Subscribers.History, authed)
}
