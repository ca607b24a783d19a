package echo

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	app "github.com/mohammadpnp/candidate-import/internal/application/bulkimport"
	domain "github.com/mohammadpnp/candidate-import/internal/domain/bulkimport"
)

type BulkImportHandler struct {
	preview   app.Preview
	execute   app.Execute
	getStatus app.GetStatus
	getRows   app.GetRows
}

type overrideRequest struct {
	RowIndex int   `json:"row_index"`
	GroupID  int64 `json:"group_id"`
}

type executeRequest struct {
	ImportID  string            `json:"import_id"`
	Overrides []overrideRequest `json:"overrides"`
}

func NewBulkImportHandler(preview app.Preview, execute app.Execute, getStatus app.GetStatus, getRows app.GetRows) *BulkImportHandler {
	return &BulkImportHandler{
		preview:   preview,
		execute:   execute,
		getStatus: getStatus,
		getRows:   getRows,
	}
}

func (h *BulkImportHandler) Preview(c echo.Context) error {
	userID, err := strconv.ParseInt(strings.TrimSpace(c.FormValue("user_id")), 10, 64)
	if err != nil {
		return writeError(c, http.StatusBadRequest, codeBadRequest, "user_id must be a positive integer")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return writeError(c, http.StatusBadRequest, codeBadRequest, "file is required")
	}
	src, err := fh.Open()
	if err != nil {
		return writeError(c, http.StatusBadRequest, codeBadRequest, "failed to read uploaded file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return writeError(c, http.StatusBadRequest, codeBadRequest, "failed to read uploaded file")
	}

	out, err := h.preview.Execute(c.Request().Context(), app.PreviewInput{
		File:     data,
		Filename: fh.Filename,
		UserID:   userID,
	})
	if err != nil {
		return writeUseCaseError(c, err, "failed to preview import")
	}

	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

func (h *BulkImportHandler) Execute(c echo.Context) error {
	var req executeRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, http.StatusBadRequest, codeBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.ImportID) == "" {
		return writeError(c, http.StatusBadRequest, codeBadRequest, "import_id is required")
	}

	overrides := make([]domain.Override, 0, len(req.Overrides))
	for _, o := range req.Overrides {
		overrides = append(overrides, domain.Override{RowIndex: o.RowIndex, GroupID: o.GroupID})
	}

	out, err := h.execute.Execute(c.Request().Context(), app.ExecuteInput{
		ImportID:  req.ImportID,
		Overrides: overrides,
	})
	if err != nil {
		return writeUseCaseError(c, err, "failed to execute import")
	}

	return c.JSON(http.StatusAccepted, apiResponse{Data: out})
}

func (h *BulkImportHandler) Status(c echo.Context) error {
	out, err := h.getStatus.Execute(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeUseCaseError(c, err, "failed to get import status")
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

func (h *BulkImportHandler) Rows(c echo.Context) error {
	out, err := h.getRows.Execute(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeUseCaseError(c, err, "failed to get import rows")
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}
