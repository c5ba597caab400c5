package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type legalDocument struct {
	Kind  string `json:"kind"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

var legalDocuments = map[string]legalDocument{
	"privacy": {
		Kind:  "privacy",
		Title: "Политика конфиденциальности",
		Body:  "Мы храним только идентификатор Telegram и сведения о купленных курсах. Данные не передаются третьим лицам, кроме платёжного провайдера при оплате.",
	},
	"offer": {
		Kind:  "offer",
		Title: "Публичная оферта",
		Body:  "Оплачивая курс, вы принимаете условия оферты. Доступ к урокам открывается сразу после подтверждения платежа.",
	},
}

// Legal renders one of the static legal pages; unknown kinds go home.
func Legal(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, ok := legalDocuments[kind]
		if !ok {
			c.Redirect(http.StatusFound, "/")
			return
		}
		c.JSON(http.StatusOK, gin.H{"page": "legal", "data": doc})
	}
}
