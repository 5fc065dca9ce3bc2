// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/stratasched/internal/app/store/schedulelog"
	"github.com/dalemusser/stratasched/internal/app/system/frappe"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database and backend dependencies for this WAFFLE app.
//
// This struct is created in ConnectDB and passed to subsequent lifecycle
// hooks: EnsureSchema, Startup, BuildHandler, and Shutdown. The Shutdown
// hook closes these connections.
type DBDeps struct {
	// MongoDB client and database
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Redis backs the utilization cache. Nil when redis_addr is blank or
	// Redis was unreachable at startup.
	Redis *redis.Client

	// Frappe is the ERP client every feature talks through.
	Frappe *frappe.Client

	// ScheduleLog stores schedule changes. Nil when audit_schedule keeps
	// them out of MongoDB.
	ScheduleLog *schedulelog.Store
}
