// Package animation rewrites material references inside animation clips.
package animation
