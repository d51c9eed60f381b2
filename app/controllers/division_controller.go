package controllers

import (
	"net/http"

	"github.com/cn-address-parser/app/responses"
	"github.com/cn-address-parser/internal/parser"
	"github.com/gin-gonic/gin"
)

// DivisionController tra cứu danh mục hành chính
type DivisionController struct {
	parser *parser.AddressParser
}

// NewDivisionController tạo mới DivisionController
func NewDivisionController(p *parser.AddressParser) *DivisionController {
	return &DivisionController{parser: p}
}

// Provinces danh sách tỉnh theo thứ tự dataset
func (dc *DivisionController) Provinces(c *gin.Context) {
	names := dc.parser.Provinces()
	c.JSON(http.StatusOK, responses.DivisionListResponse{Names: names, Total: len(names)})
}

// CitiesOfProvince danh sách thành phố của một tỉnh (tên đầy đủ hoặc alias);
// tỉnh không tồn tại trả về danh sách rỗng
func (dc *DivisionController) CitiesOfProvince(c *gin.Context) {
	name := c.Param("name")
	names := dc.parser.CitiesOfProvince(name)
	c.JSON(http.StatusOK, responses.DivisionListResponse{Parent: name, Names: names, Total: len(names)})
}

// DistrictsOfCity danh sách quận huyện của một thành phố
func (dc *DivisionController) DistrictsOfCity(c *gin.Context) {
	name := c.Param("name")
	names := dc.parser.DistrictsOfCity(name)
	c.JSON(http.StatusOK, responses.DivisionListResponse{Parent: name, Names: names, Total: len(names)})
}
