package review

// Reconcile decides the image set of an edited review.
//
//   - retain != nil: current images whose ExternalID is listed survive in their
//     current order, the rest are deleted, uploads are appended.
//   - retain == nil with uploads: uploads replace every current image.
//   - neither: nothing changes.
//
// The final set never holds two images with the same ExternalID, and an image
// that ends up in the final set is never scheduled for deletion.
func Reconcile(current []Image, retain *[]string, uploaded []Image) (final, toDelete []Image) {
	var candidates []Image
	switch {
	case retain != nil:
		keep := make(map[string]struct{}, len(*retain))
		for _, id := range *retain {
			keep[id] = struct{}{}
		}
		for _, img := range current {
			if _, ok := keep[img.ExternalID]; ok {
				candidates = append(candidates, img)
			}
		}
		candidates = append(candidates, uploaded...)
	case len(uploaded) > 0:
		candidates = uploaded
	default:
		candidates = current
	}

	seen := make(map[string]struct{}, len(candidates))
	final = make([]Image, 0, len(candidates))
	for _, img := range candidates {
		if _, dup := seen[img.ExternalID]; dup {
			continue
		}
		seen[img.ExternalID] = struct{}{}
		final = append(final, img)
	}

	for _, img := range current {
		if _, kept := seen[img.ExternalID]; !kept {
			toDelete = append(toDelete, img)
		}
	}
	return final, toDelete
}
