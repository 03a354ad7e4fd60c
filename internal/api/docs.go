package api

// @title Oblo API
// @version 1.0
// @description Backend of the Oblo mapping platform.
// @description This API exposes health probes, version information and logging introspection.

// @contact.name Oblo maintainers
// @contact.url https://github.com/oblo-platform/oblo

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:8000
// @BasePath /

// @schemes http https

// @tag.name Health
// @tag.description Health check and readiness endpoints

// @tag.name System
// @tag.description System information and version

// @tag.name Logging
// @tag.description Logger hierarchy, sinks and rotation
