package handlers

// @title Blog Content API
// @version 1.0
// @description Posts, categories and author profiles for the blog, with image and avatar uploads.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8081
// @BasePath /api/v1

// @tag.name posts
// @tag.description Blog post operations

// @tag.name categories
// @tag.description Post category operations

// @tag.name profiles
// @tag.description Author profile operations
