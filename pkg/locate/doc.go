// Package locate finds the payload directory of a library item.
//
// Each search root is probed with an ordered chain of matchers: the
// manifest's declared install directory, the display name verbatim, the
// display name ignoring case, a normalized fuzzy comparison, and finally any
// directory whose name embeds the item id. Matchers run step-major: the
// first matcher is tried on every search root before the second is tried on
// any. A candidate is accepted only when it is a directory with at least one
// entry. When every matcher fails, the operator is asked to pick one of the
// subdirectories of the search roots through a choice.Provider.
package locate
