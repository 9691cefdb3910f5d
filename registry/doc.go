// Package registry implements the process-wide agent catalog. It maps agent
// names to their metadata, maintains reverse indexes by intent and by
// capability, and offers the lookup modes the router and listing endpoints
// consume: by intent, by capability, all agents, the distinct-intent view
// used to build classifier prompts, and best-agent selection by priority.
//
// The registry is an explicit instance wired into the router and into agent
// construction; initialization order is construct registry → construct agents
// (registering each) → construct router.
package registry
