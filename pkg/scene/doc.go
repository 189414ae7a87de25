// Package scene defines the box model for Masonry: axis-aligned boxes,
// the rectangular apertures cut into them, and the two parenting relations
// (static children and dynamic attachments) that position boxes in a scene.
package scene
