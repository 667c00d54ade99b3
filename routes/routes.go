package routes

import (
	"net/http"

	"github.com/yashrajoria/catalog-import-service/controllers"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the product and bulk import routes. Write routes and the
// import endpoints go through auth.
func RegisterRoutes(r *gin.Engine, pc *controllers.ProductController, bh *controllers.BulkImportHandler, auth gin.HandlerFunc) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	api := r.Group("/api/products")
	{
		api.GET("", pc.GetProducts)
		api.GET("/:id", pc.GetProductByID)

		api.POST("", auth, pc.CreateProduct)
		api.PUT("/:id", auth, pc.UpdateProduct)
		api.DELETE("/:id", auth, pc.DeleteProduct)

		upload := api.Group("/upload", auth)
		upload.POST("", bh.Upload)
		upload.POST("/validate", bh.Validate)
		upload.GET("/jobs/:id", bh.JobStatus)
	}
}
