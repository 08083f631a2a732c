package main

import (
	"context"
	"errors"
	"net/http"

	"custdesk/models"
	"custdesk/pkg/store"

	"github.com/gin-gonic/gin"
)

// errResponded means the resource already wrote the response (a bind failure).
var errResponded = errors.New("response already written")

// resource is plain CRUD over one table. create and update bind the body
// themselves since each resource has its own payload.
type resource interface {
	list(ctx context.Context) (any, error)
	get(ctx context.Context, id uint) (any, error)
	create(c *gin.Context) (any, error)
	update(c *gin.Context, id uint, partial bool) (any, error)
	remove(ctx context.Context, id uint) error
}

func registerResource(g *gin.RouterGroup, res resource) {
	g.GET("", func(c *gin.Context) {
		items, err := res.list(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	})
	g.POST("", func(c *gin.Context) {
		item, err := res.create(c)
		if errors.Is(err, errResponded) {
			return
		}
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	})
	g.GET("/:id", func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		item, err := res.get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	})
	g.PUT("/:id", resourceUpdate(res, false))
	g.PATCH("/:id", resourceUpdate(res, true))
	g.DELETE("/:id", func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := res.remove(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}

func resourceUpdate(res resource, partial bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		item, err := res.update(c, id, partial)
		if errors.Is(err, errResponded) {
			return
		}
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// professions

type professionPatch struct {
	Description *string `json:"description" binding:"omitempty,max=50"`
}

type professionResource struct{}

func (professionResource) list(ctx context.Context) (any, error) {
	return stores.Professions.List(ctx)
}

func (professionResource) get(ctx context.Context, id uint) (any, error) {
	return stores.Professions.Get(ctx, id)
}

func (professionResource) create(c *gin.Context) (any, error) {
	var req professionBody
	if !bindJSON(c, &req) {
		return nil, errResponded
	}
	p := models.Profession{Description: req.Description}
	if err := stores.Professions.Create(c.Request.Context(), &p); err != nil {
		return nil, err
	}
	return p, nil
}

func (professionResource) update(c *gin.Context, id uint, partial bool) (any, error) {
	var patch professionPatch
	if partial {
		if !bindOptionalJSON(c, &patch) {
			return nil, errResponded
		}
	} else {
		var req professionBody
		if !bindJSON(c, &req) {
			return nil, errResponded
		}
		patch.Description = &req.Description
	}
	return stores.Professions.Update(c.Request.Context(), id, patch.Description)
}

func (professionResource) remove(ctx context.Context, id uint) error {
	return stores.Professions.Delete(ctx, id)
}

// data sheets

type dataSheetPatch struct {
	Description    *string `json:"description" binding:"omitempty,max=50"`
	HistoricalData *string `json:"historical_data"`
}

type dataSheetResource struct{}

func (dataSheetResource) list(ctx context.Context) (any, error) {
	return stores.DataSheets.List(ctx)
}

func (dataSheetResource) get(ctx context.Context, id uint) (any, error) {
	return stores.DataSheets.Get(ctx, id)
}

func (dataSheetResource) create(c *gin.Context) (any, error) {
	var req dataSheetBody
	if !bindJSON(c, &req) {
		return nil, errResponded
	}
	ds := models.DataSheet{Description: req.Description, HistoricalData: req.HistoricalData}
	if err := stores.DataSheets.Create(c.Request.Context(), &ds); err != nil {
		return nil, err
	}
	return ds, nil
}

func (dataSheetResource) update(c *gin.Context, id uint, partial bool) (any, error) {
	var patch dataSheetPatch
	if partial {
		if !bindOptionalJSON(c, &patch) {
			return nil, errResponded
		}
	} else {
		var req dataSheetBody
		if !bindJSON(c, &req) {
			return nil, errResponded
		}
		patch = dataSheetPatch{Description: &req.Description, HistoricalData: &req.HistoricalData}
	}
	return stores.DataSheets.Update(c.Request.Context(), id, store.DataSheetPatch{
		Description:    patch.Description,
		HistoricalData: patch.HistoricalData,
	})
}

func (dataSheetResource) remove(ctx context.Context, id uint) error {
	return stores.DataSheets.Delete(ctx, id)
}

// documents

type documentBody struct {
	Dtype     string `json:"dtype" binding:"required,oneof=PP ID OT"`
	DocNumber string `json:"doc_number" binding:"required,max=50"`
	Customer  uint   `json:"customer" binding:"required"`
}

type documentPatch struct {
	Dtype     *string `json:"dtype" binding:"omitempty,oneof=PP ID OT"`
	DocNumber *string `json:"doc_number" binding:"omitempty,max=50"`
	Customer  *uint   `json:"customer" binding:"omitempty,gt=0"`
}

type documentResource struct{}

func (documentResource) list(ctx context.Context) (any, error) {
	return stores.Documents.List(ctx)
}

func (documentResource) get(ctx context.Context, id uint) (any, error) {
	return stores.Documents.Get(ctx, id)
}

func (documentResource) create(c *gin.Context) (any, error) {
	var req documentBody
	if !bindJSON(c, &req) {
		return nil, errResponded
	}
	d := models.Document{Dtype: req.Dtype, DocNumber: req.DocNumber, CustomerID: req.Customer}
	if err := stores.Documents.Create(c.Request.Context(), &d); err != nil {
		return nil, err
	}
	return d, nil
}

func (documentResource) update(c *gin.Context, id uint, partial bool) (any, error) {
	var patch documentPatch
	if partial {
		if !bindOptionalJSON(c, &patch) {
			return nil, errResponded
		}
	} else {
		var req documentBody
		if !bindJSON(c, &req) {
			return nil, errResponded
		}
		patch = documentPatch{Dtype: &req.Dtype, DocNumber: &req.DocNumber, Customer: &req.Customer}
	}
	return stores.Documents.Update(c.Request.Context(), id, store.DocumentPatch{
		Dtype:      patch.Dtype,
		DocNumber:  patch.DocNumber,
		CustomerID: patch.Customer,
	})
}

func (documentResource) remove(ctx context.Context, id uint) error {
	return stores.Documents.Delete(ctx, id)
}
