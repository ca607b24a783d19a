package echo

import e "github.com/labstack/echo/v4"

func RegisterRoutes(server *e.Echo, bulkImportHandler *BulkImportHandler) {
	bulk := server.Group("/api/v1/corporate/registrations/bulk")
	bulk.POST("/preview", bulkImportHandler.Preview)
	bulk.POST("/execute", bulkImportHandler.Execute)
	bulk.GET("/status/:id", bulkImportHandler.Status)
	bulk.GET("/rows/:id", bulkImportHandler.Rows)
}
