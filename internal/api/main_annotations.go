// @title           Bookmarks API
// @version         1.0
// @description     Personal bookmark manager. Authenticate with a bearer token from /user/token.
// @BasePath        /
// @securityDefinitions.apikey BearerToken
// @in              header
// @name            Authorization
// @description     Type "Bearer" followed by a space and the access token from /user/token.
package api
