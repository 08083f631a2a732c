package main

import (
	"encoding/json"
	"net/http"

	"custdesk/models"
	"custdesk/pkg/store"

	"github.com/gin-gonic/gin"
)

// customerResponse is the expanded customer: professions and data sheet
// inline, plus the derived fields.
type customerResponse struct {
	ID             uint                `json:"id"`
	Name           string              `json:"name"`
	Address        string              `json:"address"`
	Profession     []models.Profession `json:"profession"`
	DataSheet      *models.DataSheet   `json:"data_sheet"`
	Active         bool                `json:"active"`
	StatusMessage  string              `json:"status_message"`
	NumProfessions int                 `json:"num_professions"`
}

func newCustomerResponse(c *models.Customer) customerResponse {
	professions := c.Professions
	if professions == nil {
		professions = []models.Profession{}
	}
	return customerResponse{
		ID:             c.ID,
		Name:           c.Name,
		Address:        c.Address,
		Profession:     professions,
		DataSheet:      c.DataSheet,
		Active:         c.Active,
		StatusMessage:  c.StatusMessage(),
		NumProfessions: c.NumProfessions(),
	}
}

func newCustomerResponses(cs []models.Customer) []customerResponse {
	out := make([]customerResponse, 0, len(cs))
	for i := range cs {
		out = append(out, newCustomerResponse(&cs[i]))
	}
	return out
}

type professionBody struct {
	Description string `json:"description" binding:"required,max=50"`
}

type dataSheetBody struct {
	Description    string `json:"description" binding:"required,max=50"`
	HistoricalData string `json:"historical_data" binding:"required"`
}

type createCustomerRequest struct {
	Name       string           `json:"name" binding:"required,max=50"`
	Address    string           `json:"address" binding:"required,max=50"`
	Active     *bool            `json:"active"`
	Profession []professionBody `json:"profession" binding:"required,dive"`
	DataSheet  *dataSheetBody   `json:"data_sheet" binding:"required"`
}

type updateCustomerRequest struct {
	Name       string `json:"name" binding:"required,max=50"`
	Address    string `json:"address" binding:"required,max=50"`
	DataSheet  uint   `json:"data_sheet" binding:"required"`
	Profession uint   `json:"profession" binding:"required"`
}

type patchCustomerRequest struct {
	Name      *string    `json:"name" binding:"omitempty,max=50"`
	Address   *string    `json:"address" binding:"omitempty,max=50"`
	DataSheet nullableID `json:"data_sheet"`
}

// nullableID tells an absent key (Set false) from an explicit null (Set
// true, ID nil).
type nullableID struct {
	Set bool
	ID  *uint
}

func (n *nullableID) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.ID = nil
		return nil
	}
	var id uint
	if err := json.Unmarshal(b, &id); err != nil {
		return err
	}
	n.ID = &id
	return nil
}

func registerCustomerRoutes(g *gin.RouterGroup) {
	g.GET("", listCustomersHandler)
	g.POST("", createCustomerHandler)
	g.GET("/deactivate_all", deactivateAllHandler)
	g.POST("/change_status", changeStatusHandler)
	g.GET("/:id", getCustomerHandler)
	g.PUT("/:id", updateCustomerHandler)
	g.PATCH("/:id", patchCustomerHandler)
	g.DELETE("/:id", deleteCustomerHandler)
	g.GET("/:id/deactivate", deactivateCustomerHandler)
}

// customerFilter reads the query filter. Binding never fails the request: an
// unusable value falls back to the defaults.
func customerFilter(c *gin.Context) store.CustomerFilter {
	var f store.CustomerFilter
	_ = c.ShouldBindQuery(&f)
	return f
}

func listCustomersHandler(c *gin.Context) {
	customers, err := stores.Customers.List(c.Request.Context(), customerFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCustomerResponses(customers))
}

func getCustomerHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	customer, err := stores.Customers.Get(c.Request.Context(), id, customerFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCustomerResponse(customer))
}

func createCustomerHandler(c *gin.Context) {
	var req createCustomerRequest
	if !bindJSON(c, &req) {
		return
	}
	in := store.NewCustomer{
		Name:    req.Name,
		Address: req.Address,
		Active:  req.Active,
		DataSheet: models.DataSheet{
			Description:    req.DataSheet.Description,
			HistoricalData: req.DataSheet.HistoricalData,
		},
	}
	for _, p := range req.Profession {
		in.Professions = append(in.Professions, p.Description)
	}
	customer, err := stores.Customers.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newCustomerResponse(customer))
}

func updateCustomerHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateCustomerRequest
	if !bindJSON(c, &req) {
		return
	}
	customer, err := stores.Customers.Update(c.Request.Context(), id, customerFilter(c), store.CustomerUpdate{
		Name:         req.Name,
		Address:      req.Address,
		DataSheetID:  req.DataSheet,
		ProfessionID: req.Profession,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCustomerResponse(customer))
}

func patchCustomerHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req patchCustomerRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	if req.DataSheet.ID != nil && *req.DataSheet.ID == 0 {
		badRequest(c, fieldError{Field: "data_sheet", Message: "Must be greater than 0."})
		return
	}
	customer, err := stores.Customers.PartialUpdate(c.Request.Context(), id, customerFilter(c), store.CustomerPatch{
		Name:           req.Name,
		Address:        req.Address,
		DataSheetID:    req.DataSheet.ID,
		ClearDataSheet: req.DataSheet.Set && req.DataSheet.ID == nil,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCustomerResponse(customer))
}

func deleteCustomerHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := stores.Customers.Delete(c.Request.Context(), id, customerFilter(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, "Customer Removed")
}

func deactivateCustomerHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	customer, err := stores.Customers.Deactivate(c.Request.Context(), id, customerFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCustomerResponse(customer))
}

func deactivateAllHandler(c *gin.Context) {
	customers, err := stores.Customers.DeactivateAll(c.Request.Context(), customerFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCustomerResponses(customers))
}

// changeStatusHandler sets active on every filtered customer. Only the
// string "True" in the body activates.
func changeStatusHandler(c *gin.Context) {
	body := map[string]any{}
	if !bindOptionalJSON(c, &body) {
		return
	}
	customers, err := stores.Customers.SetStatus(c.Request.Context(), customerFilter(c), store.StatusFromBody(body["active"]))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCustomerResponses(customers))
}
