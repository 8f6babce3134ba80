package group

import "github.com/fkhayef/groupapply/internal/cache"

func groupTag(id string) string { return cache.InstanceTag("group", id) }

func actorGroupsTag(userID string) string { return cache.ActorTag(cache.ClassGroups, userID) }

// groupWriteTags are the tags busted when g or its membership changes: the
// group itself, every listing that shows it, and the application listings
// of its linked members, which are scoped by membership.
func groupWriteTags(g *Group, extraUserIDs ...string) []string {
	tags := cache.Tags{}.Add(cache.ClassGroups, groupTag(g.ID), actorGroupsTag(g.OwnerID))
	users := append(g.LinkedUserIDs(nil), extraUserIDs...)
	for _, id := range users {
		tags = tags.Add(actorGroupsTag(id), cache.ActorTag(cache.ClassApplications, id))
	}
	return tags
}
