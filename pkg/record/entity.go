package record

// Entity is the static descriptor binding a collection name to its
// validation and lifecycle hooks. Descriptors are wired once at startup and
// must be treated as read-only afterwards; extending the callback queues
// concurrently with in-flight mutations is undefined.
//
// Every slot is optional. AfterUpdate and AfterDelete are queues because
// independently-registered subscribers (for example another entity reacting
// to this one's deletes) share those slots; all other slots hold at most one
// hook.
type Entity struct {
	Collection string

	Validator Validator

	BeforeValidation         Hook
	BeforeValidationOnCreate Hook
	BeforeSave               Hook
	BeforeCreate             Hook
	AfterCreate              Hook
	BeforeUpdate             Hook

	// OnUpdateError is invoked with the attempted record when the driver
	// rejects an update write.
	OnUpdateError func(hc *HookContext, attempted Record)

	AfterUpdate Queue[AfterUpdateHook]

	BeforeDelete func(hc *HookContext, rec Record)
	AfterDelete  Queue[AfterDeleteHook]
}
