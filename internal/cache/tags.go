package cache

// Entity classes, each doubling as its broad tag
const (
	ClassGroups        = "groups"
	ClassApplications  = "applications"
	ClassNotifications = "notifications"
	ClassUsers         = "users"
	ClassFriends       = "friends"
	ClassJobs          = "jobs"
)

// InstanceTag tags one entity, e.g. "group:<id>"
func InstanceTag(entity, id string) string { return entity + ":" + id }

// ActorTag tags everything class shows to one user, e.g. "groups:<userID>"
func ActorTag(class, userID string) string { return class + ":" + userID }

// Tags is an ordered, duplicate-free tag set
type Tags []string

// Add appends tags that are not present yet, skipping empty ones
func (t Tags) Add(tags ...string) Tags {
	for _, tag := range tags {
		if tag == "" || t.Has(tag) {
			continue
		}
		t = append(t, tag)
	}
	return t
}

// Has reports whether tag is in the set
func (t Tags) Has(tag string) bool {
	for _, existing := range t {
		if existing == tag {
			return true
		}
	}
	return false
}
