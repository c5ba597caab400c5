package models

type Project struct {
	ID    int    `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	Image string `json:"image" yaml:"image"`
}
