package curseforge

// orderByIDs projects got onto the order of requested. Each requested ID
// consumes one matching entity, so a single returned entity is never
// duplicated and surplus duplicates are dropped. IDs the server did not
// return contribute nothing.
func orderByIDs[T any](requested []ID, got []T, idOf func(T) ID) []T {
	byID := make(map[ID][]T, len(got))
	for _, item := range got {
		id := idOf(item)
		byID[id] = append(byID[id], item)
	}

	ordered := make([]T, 0, len(requested))
	for _, id := range requested {
		queue := byID[id]
		if len(queue) == 0 {
			continue
		}
		ordered = append(ordered, queue[0])
		byID[id] = queue[1:]
	}
	return ordered
}

func fileIDOf(f File) ID { return f.ID }

func modIDOf(m Mod) ID { return m.ID }
