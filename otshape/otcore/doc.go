/*
Package otcore provides the default shaping engine for package otshape.

The core shaper plans the features every OpenType font may use, independent
of script: variation and directional features, the common composition and
mark features, contextual fractions and the horizontal ligature and kerning
features. It is the fallback engine when no script-specific engine is a
better match.
*/
package otcore
