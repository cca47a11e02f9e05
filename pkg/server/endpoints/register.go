package endpoints

import (
	"github.com/campuscord/rolesync/pkg/server"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterIdentitiesEndpoints(srv)
	RegisterSyncEndpoints(srv)
	RegisterMappingsEndpoints(srv)
	RegisterDependenciesEndpoints(srv)
	RegisterPriorityEndpoints(srv)
	RegisterConfigurationEndpoints(srv)
	RegisterStatusEndpoints(srv)
}
